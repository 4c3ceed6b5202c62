package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"loracom/internal/externalio/server"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"loracom/internal/loracom"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Polling period while waiting for an outcome
const outcomePollInterval time.Duration = 100 * time.Millisecond

func SendMode(ctx context.Context, commandname string, args []string) {
	var apiPort int
	var receiver int
	var wait bool
	var timeout time.Duration

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	commandFlags.IntVar(&apiPort, "a", global.HTTPListenPort, "Port of the running node's HTTP API")
	commandFlags.IntVar(&apiPort, "api-port", global.HTTPListenPort, "Port of the running node's HTTP API")
	commandFlags.IntVar(&receiver, "t", -1, "Receiving device id (broadcast when unset)")
	commandFlags.IntVar(&receiver, "to", -1, "Receiving device id (broadcast when unset)")
	commandFlags.BoolVar(&wait, "w", false, "Wait for the command to be acknowledged or fail")
	commandFlags.BoolVar(&wait, "wait", false, "Wait for the command to be acknowledged or fail")
	commandFlags.DurationVar(&timeout, "timeout", global.DefaultCommandTimeout, "Maximum time to wait for an outcome")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args)
	logctx.SetLogLevel(ctx, global.Verbosity)

	line := strings.Join(commandFlags.Args(), " ")
	if line == "" {
		fatal("no command given")
	}

	client := &http.Client{Timeout: global.HTTPWriteTimeout}
	baseURL := fmt.Sprintf("http://%s:%d", global.HTTPListenAddr, apiPort)

	submitted, err := submitCommand(ctx, client, baseURL, line, receiver)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("queued seq:%d to:%d cmd:%s\n", submitted.Sequence, submitted.Receiver, submitted.Command)

	if !wait {
		return
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	outcome, err := waitOutcome(waitCtx, client, baseURL, submitted.Sequence)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("%s seq:%d\n", outcome, submitted.Sequence)
	if outcome != loracom.OutcomeAcked.String() {
		os.Exit(2)
	}
}

// Posts the command line to the node, receiver < 0 uses the node default
func submitCommand(ctx context.Context, client *http.Client, baseURL string, line string, receiver int) (submitted server.JSubmitted, err error) {
	target := baseURL + global.CommandPath
	if receiver >= 0 {
		target += "?" + url.Values{"to": {strconv.Itoa(receiver)}}.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(line))
	if err != nil {
		return
	}
	request.Header.Set("Content-Type", "text/plain")

	response, err := client.Do(request)
	if err != nil {
		err = fmt.Errorf("failed to reach node: %w", err)
		return
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		err = fmt.Errorf("failed to read node response: %w", err)
		return
	}

	if response.StatusCode != http.StatusAccepted {
		var apiErr server.Jerror
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Msg != "" {
			err = fmt.Errorf("node rejected command: %s", apiErr.Msg)
		} else {
			err = fmt.Errorf("node rejected command: %s", response.Status)
		}
		return
	}

	err = json.Unmarshal(body, &submitted)
	if err != nil {
		err = fmt.Errorf("invalid node response: %w", err)
	}
	return
}

// Polls the outcome of seq until it leaves the queue or ctx ends
func waitOutcome(ctx context.Context, client *http.Client, baseURL string, seq uint8) (outcome string, err error) {
	target := fmt.Sprintf("%s%s%d", baseURL, global.OutcomePath, seq)

	ticker := time.NewTicker(outcomePollInterval)
	defer ticker.Stop()

	for {
		var current server.JOutcome
		current, err = fetchOutcome(ctx, client, target)
		if err != nil {
			return
		}
		if current.Outcome != loracom.OutcomeQueued.String() {
			outcome = current.Outcome
			return
		}

		select {
		case <-ctx.Done():
			err = fmt.Errorf("sequence %d still queued: %w", seq, ctx.Err())
			return
		case <-ticker.C:
		}
	}
}

func fetchOutcome(ctx context.Context, client *http.Client, target string) (outcome server.JOutcome, err error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return
	}
	response, err := client.Do(request)
	if err != nil {
		err = fmt.Errorf("failed to reach node: %w", err)
		return
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		err = fmt.Errorf("outcome query failed: %s", response.Status)
		return
	}
	err = json.NewDecoder(response.Body).Decode(&outcome)
	if err != nil {
		err = fmt.Errorf("invalid node response: %w", err)
	}
	return
}
