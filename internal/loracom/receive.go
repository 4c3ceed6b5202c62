package loracom

import (
	"fmt"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"loracom/pkg/protocol"
)

// Polls for a received message without blocking.
// Commands are acknowledged before being returned. Acks are consumed here and never returned.
func (engine *Engine) GetMessage() (msg protocol.Message, ok bool, err error) {
	if engine.State() == StateIdle {
		return
	}

	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.drainCompletionsLocked()
	defer engine.sendQueue.compact()

	if !engine.rxPending.Swap(false) {
		return
	}

	n, err := engine.radio.ReadData(engine.rxBuf[:])
	if err != nil {
		err = fmt.Errorf("failed to read received frame: %w", err)
		return
	}
	if n == 0 {
		return
	}
	engine.lastRSSI.Store(int32(engine.radio.RSSI()))
	engine.Metrics.RxFrames.Add(1)

	received, err := protocol.DeconstructFrame(engine.rxBuf[:n])
	if err != nil {
		engine.Metrics.RxMalformed.Add(1)
		err = fmt.Errorf("failed to decode received frame: %w", err)
		return
	}

	if !received.AddressedTo(engine.cfg.DeviceID) {
		engine.Metrics.RxForeign.Add(1)
		logctx.LogEvent(engine.ctx, global.VerbosityDebug, global.InfoLog,
			"Discarding %s from %d addressed to %d\n", received.Type, received.SenderID, received.ReceiverID)
		return
	}

	switch received.Type {
	case protocol.TypeCommand:
		ackErr := engine.sendAckLocked(received)
		if ackErr != nil {
			logctx.LogEvent(engine.ctx, global.VerbosityStandard, global.WarnLog,
				"failed to acknowledge command sequence %d from %d: %v\n",
				received.SequenceID, received.SenderID, ackErr)
		}
		msg = received
		ok = true
	case protocol.TypeAck:
		ack, ackErr := received.Ack()
		if ackErr != nil {
			engine.Metrics.RxMalformed.Add(1)
			err = fmt.Errorf("failed to decode ack from %d: %w", received.SenderID, ackErr)
			return
		}
		engine.handleAckLocked(ack.AcknowledgedSequenceID)
	case protocol.TypeStatus:
		msg = received
		ok = true
	}
	return
}

// Replies to a command. The ack header echoes the command's sequence ID and
// never draws from the allocator, so only queued messages consume IDs.
func (engine *Engine) sendAckLocked(command protocol.Message) (err error) {
	ack := protocol.NewAckMessage(engine.cfg.DeviceID, command.SenderID, command.SequenceID)
	ack.SequenceID = command.SequenceID

	err = engine.sendMessageLocked(ack, txRecord{seq: ack.SequenceID})
	if err != nil {
		return
	}
	engine.Metrics.AcksSent.Add(1)
	return
}
