// Half-duplex radio transports used by the messaging engine
package radio

import (
	"errors"
	"sync"
)

// Interrupt reason passed to the completion handler
type Completion uint8

const (
	TxDone Completion = iota // the frame passed to StartTransmit has left the radio
	RxDone                   // a received frame is waiting for ReadData
)

func (c Completion) String() string {
	switch c {
	case TxDone:
		return "TxDone"
	case RxDone:
		return "RxDone"
	default:
		return "Unknown"
	}
}

// Half-duplex radio contract. While a transmission is in progress the radio receives nothing.
type Transceiver interface {
	// Begins sending one frame. Completion arrives later as TxDone.
	StartTransmit(frame []byte) error
	// Leaves transmit mode after TxDone
	FinishTransmit() error
	// Arms receive mode
	StartReceive() error
	// Copies the oldest received frame into buf. Returns 0 when nothing is waiting.
	ReadData(buf []byte) (int, error)
	// Signal strength of the last received frame in dBm
	RSSI() int
	// Registers the interrupt handler. Handlers run on a transport goroutine.
	OnComplete(handler func(Completion))
	Close() error
}

// Optional radio parameter control
type Tuner interface {
	SetOutputPower(dBm int) error
	SetFrequency(mhz float64) error
	SetSpreadingFactor(sf uint8) error
	SetBandwidth(khz float64) error
	SetCodingRate(cr uint8) error
	SetSyncWord(word uint8) error
	Current() Parameters
}

type Family string

const (
	SX127X Family = "sx127x"
	SX126X Family = "sx126x"
)

// Accepted ranges for one radio family
type Limits struct {
	MinPowerDBm  int
	MaxPowerDBm  int
	MinFreqMHz   float64
	MaxFreqMHz   float64
	MinSF        uint8
	MaxSF        uint8
	BandwidthKHz []float64
	MinCR        uint8
	MaxCR        uint8
}

// Last accepted radio parameters
type Parameters struct {
	PowerDBm     int     `json:"powerDBm"`
	FrequencyMHz float64 `json:"frequencyMHz"`
	SF           uint8   `json:"spreadingFactor"`
	BandwidthKHz float64 `json:"bandwidthKHz"`
	CodingRate   uint8   `json:"codingRate"`
	SyncWord     uint8   `json:"syncWord"`
}

// Parameter store embedded by concrete transports to provide Tuner
type Settings struct {
	mutex  sync.Mutex
	family Family
	limits Limits
	params Parameters
}

var (
	ErrBusy         = errors.New("radio is transmitting")
	ErrFrameSize    = errors.New("frame exceeds radio packet limit")
	ErrClosed       = errors.New("radio closed")
	ErrOutOfRange   = errors.New("parameter outside radio limits")
	ErrUnknownRadio = errors.New("unknown radio family")
)

// Largest frame any transport accepts
const MaxFrameSize int = 255
