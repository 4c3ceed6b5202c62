// Records handed from the node to its outputs (console, beats, history)
package externalio

import (
	"loracom/pkg/protocol"
	"time"
)

// Terminal result of a relayed command
type DeliveryReport struct {
	Timestamp time.Time
	DeviceID  uint8 // this node
	Receiver  uint8
	Sequence  uint8
	Command   protocol.CommandPayload
	Outcome   string // acked or failed
	Latency   time.Duration
}

// Telemetry received over the air (or produced locally)
type StatusReport struct {
	Timestamp time.Time
	DeviceID  uint8 // this node
	SenderID  uint8
	FrameRSSI int // this node's reading of the frame carrying the status
	Status    protocol.StatusPayload
}
