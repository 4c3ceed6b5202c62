package file

import (
	"io"
	"sync"
	"sync/atomic"
)

// Appends one text line per node event to a local file
type OutModule struct {
	mutex       sync.Mutex
	sink        io.WriteCloser
	batchBuffer []string
	Metrics     MetricStorage
}

type MetricStorage struct {
	LinesWritten atomic.Uint64
	WriteFailure atomic.Uint64
}
