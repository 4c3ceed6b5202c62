package journald

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

const journalContentType string = "application/vnd.fdo.journal"

// Upper bound on error bodies read back from the server
const maxErrorBody int64 = 4096

// Writes journald export format byte payload to the journald-remote HTTP endpoint
func sendJournalExport(ctx context.Context, client *http.Client, url string, payload []byte) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		err = fmt.Errorf("failed request creation: %w", err)
		return
	}

	req.Header.Set("Content-Type", journalContentType) // journald export format
	req.Header.Del("Expect")                           // Unsupported by journal remote server (will cause errors if set)

	resp, err := client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed HTTP request: %w", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("received HTTP status '%s'", resp.Status)

		// Include response body if present for additional error details
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			err = fmt.Errorf("%w: response body read failed: %v", err, readErr)
		} else if len(body) > 0 {
			err = fmt.Errorf("%w: %s", err, bytes.TrimSpace(body))
		}
		return
	}

	// Drain for connection reuse
	io.Copy(io.Discard, resp.Body)
	return
}
