// Periodic telemetry broadcast
package status

import (
	"context"
	"loracom/internal/commander"
	"loracom/pkg/protocol"
	"sync"
	"sync/atomic"
	"time"
)

// One telemetry reading. NaN inputs are unwired channels.
type Reading struct {
	BatteryVoltage float32
	Status         protocol.StatusCode
	Inputs         [protocol.StatusInputs]float32
}

type Sampler interface {
	Sample() (Reading, error)
}

// Queue side of the engine used by the producer
type Sender interface {
	EnqueueMessage(msg *protocol.Message, requiresAck bool) error
	RSSI() int
}

// Sampler reporting configured values
type StaticSampler struct {
	mutex     sync.Mutex
	reading   Reading
	reference float32 // last calibration mass in kg
}

type Producer struct {
	ctx      context.Context
	sender   Sender
	sampler  Sampler
	outputs  *commander.OutputBank
	interval time.Duration
	onSent   func(msg protocol.Message)

	Metrics MetricStorage
}

type MetricStorage struct {
	Sent          atomic.Uint64
	EnqueueFailed atomic.Uint64
	SampleFailed  atomic.Uint64
}
