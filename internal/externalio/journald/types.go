package journald

import (
	"net/http"
	"sync/atomic"
)

// Forwards node events to a systemd-journal-remote endpoint
type OutModule struct {
	sink     *http.Client
	url      string
	hostname string
	Metrics  MetricStorage
}

type MetricStorage struct {
	EntriesSent  atomic.Uint64
	WriteFailure atomic.Uint64
}
