package loracom

import (
	"fmt"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"loracom/pkg/protocol"
)

// Queues msg for delivery. The assigned sequence ID and this device's ID are written back into msg.
func (engine *Engine) EnqueueMessage(msg *protocol.Message, requiresAck bool) (err error) {
	if msg == nil {
		err = ErrNoMessage
		return
	}
	if int(msg.Length) > protocol.MaxPayloadSize {
		err = fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, msg.Length)
		return
	}
	if !msg.Type.Valid() {
		err = fmt.Errorf("%w (%d)", protocol.ErrUnknownType, msg.Type)
		return
	}

	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.drainCompletionsLocked()
	engine.sendQueue.compact()

	if engine.sendQueue.full() {
		engine.Metrics.RejectedFull.Add(1)
		logctx.LogEvent(engine.ctx, global.VerbosityStandard, global.WarnLog,
			"send queue full (%d entries), rejecting %s for %d\n",
			engine.sendQueue.count, msg.Type, msg.ReceiverID)
		err = ErrQueueFull
		return
	}

	msg.SenderID = engine.cfg.DeviceID
	msg.SequenceID = engine.allocateSeqLocked()
	engine.sendQueue.push(QueuedMessage{
		Msg:          *msg,
		LastSendTime: engine.clock.Now(),
		RequiresAck:  requiresAck,
	})
	engine.Metrics.Enqueued.Add(1)

	logctx.LogEvent(engine.ctx, global.VerbosityData, global.InfoLog,
		"Queued %s sequence %d for %d (ack required: %t)\n",
		msg.Type, msg.SequenceID, msg.ReceiverID, requiresAck)
	return
}

// Services the send queue once. Ack-required entries go first, then telemetry.
// Waits only for the radio to become free between transmissions.
func (engine *Engine) ProcessSendQueue() {
	if engine.State() == StateIdle {
		return
	}

	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.drainCompletionsLocked()

	engine.serviceAckRequiredLocked()
	engine.serviceNoAckLocked()

	engine.drainCompletionsLocked()
	engine.sendQueue.compact()
}

func (engine *Engine) serviceAckRequiredLocked() {
	for i := 0; i < engine.sendQueue.count; i++ {
		index := engine.sendQueue.slot(i)
		if engine.sendQueue.resolved[index] {
			continue
		}
		entry := &engine.sendQueue.slots[index]
		if !entry.RequiresAck {
			continue
		}

		due := entry.RetryCount == 0 || engine.clock.Now().Sub(entry.LastSendTime) >= engine.cfg.AckTimeout
		if !due {
			continue
		}

		if int(entry.RetryCount) >= engine.cfg.MaxRetries {
			entry.Failed = true
			engine.resolveLocked(index)
			logctx.LogEvent(engine.ctx, global.VerbosityStandard, global.WarnLog,
				"sequence %d to %d failed: no acknowledgement after %d transmissions\n",
				entry.Msg.SequenceID, entry.Msg.ReceiverID, entry.RetryCount)
			continue
		}

		err := engine.sendMessageLocked(entry.Msg, txRecord{seq: entry.Msg.SequenceID, queued: true, reqAck: true})
		if err != nil {
			logctx.LogEvent(engine.ctx, global.VerbosityStandard, global.WarnLog,
				"attempt %d of %d: %v\n", entry.RetryCount+1, engine.cfg.MaxRetries, err)
		}

		// A refused start still uses up an attempt
		entry.RetryCount++
		entry.LastSendTime = engine.clock.Now()
	}
}

func (engine *Engine) serviceNoAckLocked() {
	limit := engine.cfg.TxTimeout + engine.cfg.AckTimeout

	for i := 0; i < engine.sendQueue.count; i++ {
		index := engine.sendQueue.slot(i)
		if engine.sendQueue.resolved[index] {
			continue
		}
		entry := &engine.sendQueue.slots[index]
		if entry.RequiresAck {
			continue
		}

		if entry.RetryCount > 0 {
			if engine.clock.Now().Sub(entry.LastSendTime) >= limit {
				entry.Failed = true
				engine.resolveLocked(index)
				logctx.LogEvent(engine.ctx, global.VerbosityStandard, global.WarnLog,
					"sequence %d never reported transmit completion\n", entry.Msg.SequenceID)
			}
			continue
		}

		err := engine.sendMessageLocked(entry.Msg, txRecord{seq: entry.Msg.SequenceID, queued: true})
		if err != nil {
			entry.startFailures++
			logctx.LogEvent(engine.ctx, global.VerbosityStandard, global.WarnLog,
				"start %d of %d: %v\n", entry.startFailures, engine.cfg.MaxRetries, err)
			if int(entry.startFailures) >= engine.cfg.MaxRetries {
				entry.Failed = true
				engine.resolveLocked(index)
			}
			continue
		}
		entry.RetryCount = 1
		entry.LastSendTime = engine.clock.Now()
	}
}
