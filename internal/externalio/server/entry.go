// HTTP server exposing node state, command submission and metric queries to the local system
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"net/http"
	"strconv"
	"strings"
)

// Read in web static files at compile time
//
//go:embed static-files/help.html
var webFiles embed.FS

// Sets up HTTP listener configuration for the node API
func SetupListener(ctx context.Context, port int, handlers Handlers) (server *http.Server, err error) {
	if handlers.Search == nil || handlers.Discover == nil || handlers.Aggregate == nil {
		err = fmt.Errorf("metric search, discovery and aggregation sources are required")
		return
	}

	requestMultiplexer := http.NewServeMux()

	helpPage, err := webFiles.ReadFile("static-files/help.html")
	if err != nil {
		err = fmt.Errorf("failed reading help html page from internal fs: %w", err)
		return
	}

	// Replace variables in html with globals
	replacer := strings.NewReplacer(
		"@@LISTEN_ADDR@@", global.HTTPListenAddr,
		"@@LISTEN_PORT@@", strconv.Itoa(port),
		"@@DATA_PATH@@", global.DataPath,
		"@@DISCOVER_PATH@@", global.DiscoveryPath,
		"@@AGGREGATION_PATH@@", global.AggregationPath,
		"@@QUEUE_PATH@@", global.QueuePath,
		"@@OUTCOME_PATH@@", global.OutcomePath,
		"@@COMMAND_PATH@@", global.CommandPath,
	)
	helpPage = []byte(replacer.Replace(string(helpPage)))

	// Root help page
	requestMultiplexer.HandleFunc("/", func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if clientRequest.URL.Path != "/" {
			serverResponder.WriteHeader(http.StatusNotFound)
			return
		}

		serverResponder.Header().Set("Content-Type", "text/html; charset=utf-8")
		serverResponder.WriteHeader(http.StatusOK)
		serverResponder.Write(helpPage)
	})

	// Metric Discovery Requests
	requestMultiplexer.HandleFunc(global.DiscoveryPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handleDiscovery(ctx, handlers.Discover, serverResponder, clientRequest)
	})

	// Metric Data Requests
	requestMultiplexer.HandleFunc(global.DataPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handleData(ctx, handlers.Search, serverResponder, clientRequest)
	})

	// Metric Aggregation Requests
	requestMultiplexer.HandleFunc(global.AggregationPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handleAggregation(ctx, handlers.Aggregate, serverResponder, clientRequest)
	})

	// Node state and command relay
	requestMultiplexer.HandleFunc(global.QueuePath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if handlers.Node == nil {
			serverResponder.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		handleQueue(ctx, handlers.Node, serverResponder)
	})
	requestMultiplexer.HandleFunc(global.OutcomePath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if handlers.Node == nil {
			serverResponder.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		handleOutcome(ctx, handlers.Node, serverResponder, clientRequest)
	})
	requestMultiplexer.HandleFunc(global.CommandPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodPost {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if handlers.Node == nil {
			serverResponder.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		handleCommand(ctx, handlers.Node, serverResponder, clientRequest)
	})

	// Server configuration
	server = &http.Server{
		Addr:         global.HTTPListenAddr + ":" + strconv.Itoa(port),
		Handler:      requestMultiplexer,
		ReadTimeout:  global.HTTPReadTimeout,
		WriteTimeout: global.HTTPWriteTimeout,
		IdleTimeout:  global.HTTPIdleTimeout,
		ErrorLog:     log.New(httpLogWriter{ctx: ctx}, "", 0),
	}

	return
}

// Starts the HTTP server and waits for requests
func Start(ctx context.Context, server *http.Server) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Node API server starting on %s (http://%s/)\n",
		server.Addr,
		server.Addr,
	)
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Node API server failed to start: %v\n", err)
	}
}

// Encodes JSON and sends as response body
func jResp(ctx context.Context, serverResponder http.ResponseWriter, content any) {
	jRespStatus(ctx, serverResponder, http.StatusOK, content)
}

func jRespStatus(ctx context.Context, serverResponder http.ResponseWriter, status int, content any) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(content); err != nil {
		serverResponder.WriteHeader(http.StatusInternalServerError)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed marshaling response: %v\n", err)
		return
	}
	serverResponder.Header().Set("Content-Type", "application/json")
	serverResponder.WriteHeader(status)
	serverResponder.Write(buf.Bytes())
}

// Logs HTTP server errors to internal program buffer (via context logger)
func (logWriter httpLogWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	if n == 0 {
		return
	}
	logctx.LogEvent(
		logWriter.ctx,
		global.VerbosityStandard,
		global.ErrorLog,
		"%s\n", strings.TrimSpace(string(p)),
	)
	return
}
