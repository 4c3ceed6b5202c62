// Reliable messaging engine over a half-duplex radio.
// Commands are retried until acknowledged, telemetry is sent once.
package loracom

import (
	"context"
	"loracom/internal/radio"
	"loracom/pkg/protocol"
	"sync"
	"sync/atomic"
	"time"
)

// Radio mode as seen by the engine
type State uint32

const (
	StateIdle         State = iota // not started
	StateListening                 // receive armed, free to transmit
	StateTransmitting              // a frame is on the air
)

func (state State) String() string {
	switch state {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateTransmitting:
		return "transmitting"
	default:
		return "unknown"
	}
}

// Delivery state of a sequence ID
type Outcome uint8

const (
	OutcomeUnknown Outcome = iota // never seen or aged out of the done queue
	OutcomeQueued
	OutcomeAcked
	OutcomeFailed
)

func (outcome Outcome) String() string {
	switch outcome {
	case OutcomeQueued:
		return "queued"
	case OutcomeAcked:
		return "acked"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type Config struct {
	DeviceID   uint8
	MaxRetries int           // transmissions of an ack-required message before it fails (1-255)
	AckTimeout time.Duration // wait for an ACK before retransmitting
	TxTimeout  time.Duration // wait for the radio to finish a transmission
	QueueSize  int           // send and done queue capacity
	Clock      Clock         // drives retry timing, system clock when nil
}

// Bookkeeping for one outbound message
type QueuedMessage struct {
	Msg          protocol.Message
	RetryCount   uint8
	LastSendTime time.Time
	Acknowledged bool
	Failed       bool
	RequiresAck  bool

	startFailures uint8 // no-ack transmissions the radio refused to start
}

// Transmission handed to the radio and not yet completed
type txRecord struct {
	seq    uint8
	queued bool // belongs to a send queue entry (acks do not)
	reqAck bool
}

// Point in time copy of the queues
type Snapshot struct {
	State   State
	NextSeq uint8
	Live    []QueuedMessage // oldest first
	Done    []QueuedMessage // oldest first
}

type Engine struct {
	ctx       context.Context
	Namespace []string
	cfg       Config
	radio     radio.Transceiver
	clock     Clock

	// Queues and sequence allocation, owned by task side callers
	mutex     sync.Mutex
	sendQueue sendRing
	doneQueue doneRing
	nextSeq   uint8
	rxBuf     [radio.MaxFrameSize]byte

	// Shared with the radio completion handler
	state       atomic.Uint32
	rxPending   atomic.Bool
	current     atomic.Pointer[txRecord]
	txSince     atomic.Int64 // unix nanos the current transmission started
	completions chan txRecord

	lastRSSI atomic.Int32
	Metrics  MetricStorage
}

type MetricStorage struct {
	Enqueued           atomic.Uint64
	RejectedFull       atomic.Uint64
	Transmissions      atomic.Uint64
	Acked              atomic.Uint64
	Failed             atomic.Uint64
	AcksSent           atomic.Uint64
	RxFrames           atomic.Uint64
	RxMalformed        atomic.Uint64
	RxForeign          atomic.Uint64
	StaleAcks          atomic.Uint64
	TxTimeouts         atomic.Uint64
	CompletionOverflow atomic.Uint64
}
