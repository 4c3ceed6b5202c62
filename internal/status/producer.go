package status

import (
	"context"
	"fmt"
	"loracom/internal/commander"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"loracom/pkg/protocol"
	"math"
	"time"
)

type Config struct {
	Sender   Sender
	Sampler  Sampler
	Outputs  *commander.OutputBank // reported on unwired input channels
	Interval time.Duration
	OnSent   func(msg protocol.Message) // called with each queued status
}

func NewProducer(ctx context.Context, cfg Config) (producer *Producer, err error) {
	if cfg.Sender == nil || cfg.Sampler == nil {
		err = fmt.Errorf("status producer requires a sender and a sampler")
		return
	}
	if cfg.Interval <= 0 {
		err = fmt.Errorf("status interval must be positive, got %s", cfg.Interval)
		return
	}
	producer = &Producer{
		ctx:      logctx.AppendCtxTag(ctx, global.NSStatus),
		sender:   cfg.Sender,
		sampler:  cfg.Sampler,
		outputs:  cfg.Outputs,
		interval: cfg.Interval,
		onSent:   cfg.OnSent,
	}
	return
}

// Builds the broadcast status message from a fresh sample
func (producer *Producer) Build() (msg protocol.Message, err error) {
	reading, sampleErr := producer.sampler.Sample()
	if sampleErr != nil {
		producer.Metrics.SampleFailed.Add(1)
		logctx.LogEvent(producer.ctx, global.VerbosityStandard, global.WarnLog,
			"failed to sample telemetry: %v\n", sampleErr)
		reading.Status = protocol.StatusError
		for i := range reading.Inputs {
			reading.Inputs[i] = float32(math.NaN())
		}
	}

	payload := protocol.StatusPayload{
		RSSI:           clampRSSI(producer.sender.RSSI()),
		BatteryVoltage: reading.BatteryVoltage,
		Status:         reading.Status,
		Inputs:         reading.Inputs,
	}

	if producer.outputs != nil {
		states := producer.outputs.States()
		for i := range payload.Inputs {
			if i >= len(states) || !math.IsNaN(float64(payload.Inputs[i])) {
				continue
			}
			payload.Inputs[i] = 0
			if states[i] {
				payload.Inputs[i] = 1
			}
		}
	}

	msg, err = protocol.NewStatusMessage(0, protocol.BroadcastID, payload)
	if err != nil {
		err = fmt.Errorf("failed to build status message: %w", err)
		return
	}
	return
}

// Queues one status broadcast without acknowledgement
func (producer *Producer) SendNow() (seq uint8, err error) {
	msg, err := producer.Build()
	if err != nil {
		return
	}
	err = producer.sender.EnqueueMessage(&msg, false)
	if err != nil {
		producer.Metrics.EnqueueFailed.Add(1)
		err = fmt.Errorf("failed to queue status: %w", err)
		return
	}
	seq = msg.SequenceID
	producer.Metrics.Sent.Add(1)

	logctx.LogEvent(producer.ctx, global.VerbosityData, global.InfoLog,
		"Queued status sequence %d\n", seq)
	if producer.onSent != nil {
		producer.onSent(msg)
	}
	return
}

// Sends a status every interval until ctx ends
func (producer *Producer) Run(ctx context.Context) {
	ticker := time.NewTicker(producer.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := producer.SendNow()
			if err != nil {
				logctx.LogEvent(producer.ctx, global.VerbosityStandard, global.WarnLog, "%v\n", err)
			}
		}
	}
}

func clampRSSI(rssi int) (clamped int8) {
	switch {
	case rssi < math.MinInt8:
		clamped = math.MinInt8
	case rssi > math.MaxInt8:
		clamped = math.MaxInt8
	default:
		clamped = int8(rssi)
	}
	return
}
