package node

import (
	"context"
	"loracom/internal/commander"
	"loracom/internal/externalio/beats"
	"loracom/internal/externalio/console"
	"loracom/internal/externalio/file"
	"loracom/internal/externalio/history"
	"loracom/internal/externalio/journald"
	"loracom/internal/loracom"
	nodemetrics "loracom/internal/node/metrics"
	"loracom/internal/queue/mpmc"
	"loracom/internal/radio"
	"loracom/internal/status"
	"loracom/pkg/protocol"
	"net/http"
	"sync"
	"time"
)

type JSONConfig struct {
	Device struct {
		ID     int    `json:"id"`
		Family string `json:"family"`
	} `json:"device"`
	Radio struct {
		Transport  string `json:"transport"`
		SerialPort string `json:"serialPort,omitempty"`
		SerialBaud int    `json:"serialBaud,omitempty"`
		AirAddress string `json:"airAddress,omitempty"`
		LinkKey    string `json:"linkKey,omitempty"`
		RSSI       int    `json:"reportedRSSI,omitempty"`
	} `json:"radio"`
	Protocol struct {
		AckTimeout  string `json:"ackTimeout"`
		TxTimeout   string `json:"txTimeout"`
		MaxRetries  int    `json:"maxRetries"`
		QueueSize   int    `json:"queueSize"`
		ServiceTick string `json:"serviceTick,omitempty"`
	} `json:"protocol"`
	Status struct {
		Enabled  bool      `json:"enabled"`
		Interval string    `json:"interval"`
		Battery  float32   `json:"batteryVoltage"`
		Inputs   []float32 `json:"inputs,omitempty"`
	} `json:"status"`
	Relay struct {
		DefaultReceiver *int `json:"defaultReceiver,omitempty"`
		ApplyLocally    bool `json:"applyLocally"`
		InboxSize       int  `json:"inboxSize,omitempty"`
	} `json:"relay"`
	Console struct {
		Enabled    bool   `json:"enabled"`
		SerialPort string `json:"serialPort,omitempty"`
		SerialBaud int    `json:"serialBaud,omitempty"`
	} `json:"console"`
	Outputs struct {
		BeatsAddress string `json:"beatsAddress,omitempty"`
		JournaldURL  string `json:"journaldURL,omitempty"`
		HistoryPath  string `json:"historyPath,omitempty"`
		EventLogPath string `json:"eventLogPath,omitempty"`
	} `json:"outputs"`
	Metrics struct {
		Interval        string `json:"collectionInterval"`
		MaxAge          string `json:"maximumRetention,omitempty"`
		EnableAPIServer bool   `json:"enableHTTPAPIServer"`
		APIServerPort   int    `json:"HTTPAPIServerPort"`
	} `json:"metrics"`
}

type Config struct {
	// Engine
	DeviceID    uint8
	AckTimeout  time.Duration
	TxTimeout   time.Duration
	MaxRetries  int
	QueueSize   int
	ServiceTick time.Duration

	// Radio
	Radio radio.Config

	// Status broadcasts
	StatusEnabled  bool
	StatusInterval time.Duration
	Battery        float32
	Inputs         []float32

	// Command relay
	DefaultReceiver uint8
	ApplyLocally    bool // run relayed commands on this node once the receiver acks them
	InboxSize       int

	// Console
	ConsoleEnabled bool
	ConsolePort    string
	ConsoleBaud    int

	// Outputs
	BeatsAddress string
	JournaldURL  string
	HistoryPath  string
	EventLogPath string

	// Metrics
	APIServerEnabled         bool
	APIServerPort            int
	MetricCollectionInterval time.Duration
	MetricMaxAge             time.Duration
}

// Frame surfaced by the engine, waiting for the dispatcher
type inbound struct {
	msg      protocol.Message
	rssi     int
	received time.Time
}

// Command relayed by this node, waiting on its outcome
type pending struct {
	receiver uint8
	command  protocol.CommandPayload
	queued   time.Time
}

type Daemon struct {
	ConfigPath string // re-read on reload when set

	cfg       Config
	globalCtx context.Context
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}

	wg       sync.WaitGroup
	stopOnce sync.Once
	mutex    sync.RWMutex // guards engine and tracker for API and console callers

	// Components (leaf to root)
	radio     radio.Transceiver
	engine    *loracom.Engine
	commander *commander.Commander
	sampler   *status.StaticSampler
	producer  *status.Producer
	inbox     *mpmc.Queue[inbound]
	tracker   *tracker

	// Outputs
	console *console.Console
	beats   *beats.OutModule
	journal *journald.OutModule
	history *history.OutModule
	events  *file.OutModule

	metricsCollector *nodemetrics.Gatherer
	APIServer        *http.Server
}
