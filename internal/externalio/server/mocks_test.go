package server

import (
	"loracom/internal/loracom"
	"loracom/internal/metrics"
	"loracom/pkg/protocol"
)

func mockDiscoverer(results []metrics.Metric) Discoverer {
	return func(query metrics.Query) []metrics.Metric {
		return results
	}
}

func mockDataSearcher(results []metrics.Metric) DataSearcher {
	return func(query metrics.Query) []metrics.Metric {
		return results
	}
}

func mockAggSearcher(result metrics.Metric, err error) AggSearcher {
	return func(kind string, query metrics.Query) (metrics.Metric, error) {
		return result, err
	}
}

func mockHandlers(node Node) Handlers {
	return Handlers{
		Search:    mockDataSearcher(nil),
		Discover:  mockDiscoverer(nil),
		Aggregate: mockAggSearcher(metrics.Metric{}, nil),
		Node:      node,
	}
}

type fakeNode struct {
	snapshot  loracom.Snapshot
	outcomes  map[uint8]loracom.Outcome
	submitErr error
	nextSeq   uint8

	lines     []string
	receivers []uint8
}

func (node *fakeNode) Snapshot() loracom.Snapshot {
	return node.snapshot
}

func (node *fakeNode) Outcome(seq uint8) loracom.Outcome {
	return node.outcomes[seq]
}

func (node *fakeNode) SubmitCommand(line string, receiver uint8) (seq uint8, err error) {
	if node.submitErr != nil {
		err = node.submitErr
		return
	}
	_, err = protocol.ParseCommand(line)
	if err != nil {
		return
	}
	node.lines = append(node.lines, line)
	node.receivers = append(node.receivers, receiver)
	seq = node.nextSeq
	node.nextSeq++
	return
}
