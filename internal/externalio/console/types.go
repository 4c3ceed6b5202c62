package console

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// Queues a command line for a device, returning its sequence ID
type Submitter func(line string, receiver uint8) (seq uint8, err error)

type Config struct {
	SerialPort string // empty uses stdin and stdout
	SerialBaud int
	Receiver   uint8 // target for lines without an @<device> prefix
	Submit     Submitter
}

// Line console relaying typed commands onto the radio and printing what comes back
type Console struct {
	ctx       context.Context
	Namespace []string
	name      string
	in        io.Reader
	out       io.Writer
	closer    io.Closer // serial port, nil for stdio
	prompt    bool
	receiver  uint8
	submit    Submitter

	outMutex sync.Mutex
	Metrics  MetricStorage
}

type MetricStorage struct {
	LinesRead    atomic.Uint64
	Submitted    atomic.Uint64
	Rejected     atomic.Uint64
	LinesWritten atomic.Uint64
}
