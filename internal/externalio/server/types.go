package server

import (
	"context"
	"loracom/internal/loracom"
	metricGlb "loracom/internal/metrics"
)

type httpLogWriter struct {
	ctx context.Context
}

type Jerror struct {
	Msg string `json:"error"`
}

type DataSearcher func(query metricGlb.Query) []metricGlb.Metric
type Discoverer func(query metricGlb.Query) []metricGlb.Metric
type AggSearcher func(kind string, query metricGlb.Query) (metricGlb.Metric, error)

// Node side of the API. *node.Daemon satisfies it.
type Node interface {
	Snapshot() loracom.Snapshot
	Outcome(seq uint8) loracom.Outcome
	SubmitCommand(line string, receiver uint8) (seq uint8, err error)
}

// Sources backing each endpoint. A nil Node disables the node endpoints.
type Handlers struct {
	Search    DataSearcher
	Discover  Discoverer
	Aggregate AggSearcher
	Node      Node
}

type JQueue struct {
	State   string    `json:"state"`
	NextSeq uint8     `json:"nextSequence"`
	Live    []JQueued `json:"live"`
	Done    []JQueued `json:"done"`
}

type JQueued struct {
	Sequence     uint8  `json:"sequence"`
	Type         string `json:"type"`
	Receiver     uint8  `json:"receiver"`
	Length       uint8  `json:"length"`
	RetryCount   uint8  `json:"retryCount"`
	LastSend     string `json:"lastSend,omitempty"`
	RequiresAck  bool   `json:"requiresAck"`
	Acknowledged bool   `json:"acknowledged"`
	Failed       bool   `json:"failed"`
}

type JOutcome struct {
	Sequence uint8  `json:"sequence"`
	Outcome  string `json:"outcome"`
}

type JSubmitted struct {
	Sequence uint8  `json:"sequence"`
	Receiver uint8  `json:"receiver"`
	Command  string `json:"command"`
}
