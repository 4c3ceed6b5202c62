package history

import (
	"database/sql"
	"sync/atomic"
)

// SQLite store of delivery outcomes and received telemetry
type OutModule struct {
	db      *sql.DB
	Metrics MetricStorage
}

type MetricStorage struct {
	Deliveries   atomic.Uint64
	Statuses     atomic.Uint64
	WriteFailure atomic.Uint64
}

// Stored delivery outcome
type Delivery struct {
	Timestamp int64 // unix milliseconds
	Receiver  uint8
	Sequence  uint8
	Command   string
	Outcome   string
	LatencyMs int64
}

// Stored telemetry reading
type Status struct {
	Timestamp int64 // unix milliseconds
	SenderID  uint8
	FrameRSSI int
	RSSI      int8
	Battery   float32
	Code      uint8
}
