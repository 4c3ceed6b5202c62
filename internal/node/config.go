package node

import (
	"encoding/json"
	"fmt"
	"loracom/internal/global"
	"loracom/internal/radio"
	"loracom/pkg/protocol"
	"os"
	"time"
)

// Loads JSON config from file
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %w", path, err)
		return
	}

	return
}

// Parses JSON config into daemon config
func (cfg JSONConfig) NewDaemonConf() (config Config, err error) {
	// Device
	if cfg.Device.ID < 0 || cfg.Device.ID >= int(protocol.BroadcastID) {
		err = fmt.Errorf("device id %d outside 0-%d", cfg.Device.ID, protocol.BroadcastID-1)
		return
	}
	config.DeviceID = uint8(cfg.Device.ID)

	family := radio.SX127X
	if cfg.Device.Family != "" {
		family, err = radio.ParseFamily(cfg.Device.Family)
		if err != nil {
			return
		}
	}

	// Radio
	config.Radio = radio.Config{
		Transport:  cfg.Radio.Transport,
		Family:     family,
		SerialPort: cfg.Radio.SerialPort,
		SerialBaud: cfg.Radio.SerialBaud,
		AirAddress: cfg.Radio.AirAddress,
		LinkKey:    cfg.Radio.LinkKey,
		RSSI:       cfg.Radio.RSSI,
	}

	// Protocol
	config.MaxRetries = cfg.Protocol.MaxRetries
	config.QueueSize = cfg.Protocol.QueueSize
	config.AckTimeout, err = parseDuration("ack timeout", cfg.Protocol.AckTimeout)
	if err != nil {
		return
	}
	config.TxTimeout, err = parseDuration("transmit timeout", cfg.Protocol.TxTimeout)
	if err != nil {
		return
	}
	config.ServiceTick, err = parseDuration("service tick", cfg.Protocol.ServiceTick)
	if err != nil {
		return
	}

	// Status
	config.StatusEnabled = cfg.Status.Enabled
	config.Battery = cfg.Status.Battery
	config.Inputs = cfg.Status.Inputs
	config.StatusInterval, err = parseDuration("status interval", cfg.Status.Interval)
	if err != nil {
		return
	}

	// Relay
	config.DefaultReceiver = protocol.BroadcastID
	if cfg.Relay.DefaultReceiver != nil {
		receiver := *cfg.Relay.DefaultReceiver
		if receiver < 0 || receiver > int(protocol.BroadcastID) {
			err = fmt.Errorf("default receiver %d outside 0-%d", receiver, protocol.BroadcastID)
			return
		}
		config.DefaultReceiver = uint8(receiver)
	}
	config.ApplyLocally = cfg.Relay.ApplyLocally
	config.InboxSize = cfg.Relay.InboxSize

	// Console
	config.ConsoleEnabled = cfg.Console.Enabled
	config.ConsolePort = cfg.Console.SerialPort
	config.ConsoleBaud = cfg.Console.SerialBaud

	// Outputs
	config.BeatsAddress = cfg.Outputs.BeatsAddress
	config.JournaldURL = cfg.Outputs.JournaldURL
	config.HistoryPath = cfg.Outputs.HistoryPath
	config.EventLogPath = cfg.Outputs.EventLogPath

	// Metric settings
	config.APIServerEnabled = cfg.Metrics.EnableAPIServer
	config.APIServerPort = cfg.Metrics.APIServerPort
	config.MetricMaxAge, err = parseDuration("metric max age", cfg.Metrics.MaxAge)
	if err != nil {
		return
	}
	config.MetricCollectionInterval, err = parseDuration("collection interval", cfg.Metrics.Interval)
	if err != nil {
		return
	}

	return
}

// Empty values are left zero for setDefaults
func parseDuration(name, raw string) (value time.Duration, err error) {
	if raw == "" {
		return
	}
	value, err = time.ParseDuration(raw)
	if err != nil {
		err = fmt.Errorf("failed to parse %s: %w", name, err)
		return
	}
	if value < 0 {
		err = fmt.Errorf("%s cannot be negative: %s", name, raw)
	}
	return
}

// Sets defaults for any missing/invalid values
func (cfg *Config) setDefaults() {
	// Engine
	if cfg.AckTimeout == 0 {
		cfg.AckTimeout = global.DefaultAckTimeout
	}
	if cfg.TxTimeout == 0 {
		cfg.TxTimeout = global.DefaultTxTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = global.DefaultMaxRetries
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = global.DefaultQueueSize
	}
	if cfg.ServiceTick == 0 {
		cfg.ServiceTick = global.DefaultServiceTick
	}

	// Radio
	if cfg.Radio.Transport == "" {
		cfg.Radio.Transport = radio.TransportSim
	}
	if cfg.Radio.Family == "" {
		cfg.Radio.Family = radio.SX127X
	}
	if cfg.Radio.SerialBaud == 0 {
		cfg.Radio.SerialBaud = global.DefaultSerialBaud
	}
	if cfg.Radio.AirAddress == "" {
		cfg.Radio.AirAddress = global.DefaultAirAddress
	}
	if cfg.Radio.RSSI == 0 {
		cfg.Radio.RSSI = global.DefaultSimRSSI
	}

	// Status
	if cfg.StatusInterval == 0 {
		cfg.StatusInterval = global.DefaultStatusInterval
	}

	// Relay
	if cfg.InboxSize < 2 {
		cfg.InboxSize = global.DefaultInboxSize
	}

	// Console
	if cfg.ConsoleBaud == 0 {
		cfg.ConsoleBaud = global.DefaultSerialBaud
	}

	// Metrics
	if cfg.MetricMaxAge == 0 {
		cfg.MetricMaxAge = global.DefaultMetricMaxAge
	}
	if cfg.APIServerPort == 0 {
		cfg.APIServerPort = global.HTTPListenPort
	}
	if cfg.MetricCollectionInterval == 0 {
		cfg.MetricCollectionInterval = global.DefaultMetricInterval
	}
}

// Config written by the configure command
func TemplateConfig() (cfg JSONConfig) {
	cfg.Device.ID = int(global.DefaultDeviceID)
	cfg.Device.Family = string(radio.SX127X)
	cfg.Radio.Transport = radio.TransportUDP
	cfg.Radio.AirAddress = global.DefaultAirAddress
	cfg.Protocol.AckTimeout = global.DefaultAckTimeout.String()
	cfg.Protocol.TxTimeout = global.DefaultTxTimeout.String()
	cfg.Protocol.MaxRetries = global.DefaultMaxRetries
	cfg.Protocol.QueueSize = global.DefaultQueueSize
	cfg.Protocol.ServiceTick = global.DefaultServiceTick.String()
	cfg.Status.Enabled = true
	cfg.Status.Interval = global.DefaultStatusInterval.String()
	cfg.Status.Battery = 3.7
	cfg.Relay.ApplyLocally = true
	cfg.Outputs.HistoryPath = global.DefaultHistoryPath
	cfg.Outputs.EventLogPath = global.DefaultEventsPath
	cfg.Metrics.Interval = global.DefaultMetricInterval.String()
	cfg.Metrics.MaxAge = global.DefaultMetricMaxAge.String()
	cfg.Metrics.EnableAPIServer = true
	cfg.Metrics.APIServerPort = global.HTTPListenPort
	return
}
