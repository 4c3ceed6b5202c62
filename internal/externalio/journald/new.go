package journald

import (
	"bytes"
	"context"
	"fmt"
	"loracom/internal/global"
	"net/http"
	"net/url"
	"time"
)

// Creates new journald output module. Tests connection. Returns nil nil if no url.
func NewOutput(endpoint string) (module *OutModule, err error) {
	if endpoint == "" {
		return
	}

	new := &OutModule{hostname: global.Hostname}

	transport := &http.Transport{
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: -1, // Not supported by journal remote server
	}

	baseURL, err := url.Parse(endpoint)
	if err != nil {
		err = fmt.Errorf("invalid journald URL: %w", err)
		return
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		err = fmt.Errorf("invalid journald URL: scheme must be http or https, got %q", baseURL.Scheme)
		return
	}
	uploadPath := &url.URL{Path: "upload"} // Only path accepted by the remote server
	new.url = baseURL.ResolveReference(uploadPath).String()

	new.sink = &http.Client{
		Transport: transport,
		Timeout:   global.HTTPWriteTimeout,
	}

	testCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(testCtx, http.MethodPost, new.url, bytes.NewReader(nil))
	if err != nil {
		err = fmt.Errorf("failed to create test HTTP connection to journald: %w", err)
		return
	}
	req.Header.Set("Content-Type", journalContentType)

	resp, err := new.sink.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to test HTTP connection to journald: %w", err)
		return
	}
	resp.Body.Close()

	module = new
	return
}
