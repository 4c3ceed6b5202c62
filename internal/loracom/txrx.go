package loracom

import (
	"fmt"
	"loracom/internal/atomics"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"loracom/pkg/protocol"
	"time"
)

// Hands one frame to the radio once the previous transmission has finished.
// On error the engine is back in Listening and nothing was transmitted.
func (engine *Engine) sendMessageLocked(msg protocol.Message, record txRecord) (err error) {
	if engine.State() == StateIdle {
		err = ErrNotStarted
		return
	}

	frame, err := protocol.ConstructFrame(msg)
	if err != nil {
		err = fmt.Errorf("failed to build frame for sequence %d: %w", msg.SequenceID, err)
		return
	}

	free := atomics.WaitFor(func() bool {
		return engine.State() != StateTransmitting
	}, engine.cfg.TxTimeout)
	if !free {
		engine.Metrics.TxTimeouts.Add(1)
		engine.watchdogLocked()
		err = fmt.Errorf("%w (sequence %d, waited %s)", ErrTxTimeout, msg.SequenceID, engine.cfg.TxTimeout)
		return
	}

	// Bookkeeping from the finished transmission lands before the next one starts
	engine.drainCompletionsLocked()

	if !engine.state.CompareAndSwap(uint32(StateListening), uint32(StateTransmitting)) {
		err = fmt.Errorf("radio not listening (state %s)", engine.State())
		return
	}
	engine.txSince.Store(time.Now().UnixNano())
	engine.current.Store(&record)

	err = engine.radio.StartTransmit(frame)
	if err != nil {
		engine.current.Store(nil)
		engine.state.Store(uint32(StateListening))
		err = fmt.Errorf("failed to start transmission of sequence %d: %w", msg.SequenceID, err)
		return
	}
	engine.Metrics.Transmissions.Add(1)

	logctx.LogEvent(engine.ctx, global.VerbosityData, global.InfoLog,
		"Transmitting %s sequence %d to %d (%d byte body)\n",
		msg.Type, msg.SequenceID, msg.ReceiverID, msg.Length)
	return
}

// Recovers from a transmission whose completion never arrived
func (engine *Engine) watchdogLocked() {
	if engine.State() != StateTransmitting || engine.sinceTx() < engine.cfg.TxTimeout {
		return
	}

	stuck := engine.current.Swap(nil)
	if stuck != nil {
		logctx.LogEvent(engine.ctx, global.VerbosityStandard, global.WarnLog,
			"transmission of sequence %d never completed, resetting radio to receive\n", stuck.seq)
	} else {
		logctx.LogEvent(engine.ctx, global.VerbosityStandard, global.WarnLog,
			"transmission never completed, resetting radio to receive\n")
	}

	err := engine.radio.FinishTransmit()
	if err != nil {
		logctx.LogEvent(engine.ctx, global.VerbosityStandard, global.ErrorLog,
			"failed to finish stuck transmission: %v\n", err)
	}
	err = engine.radio.StartReceive()
	if err != nil {
		logctx.LogEvent(engine.ctx, global.VerbosityStandard, global.ErrorLog,
			"failed to re-arm receive after stuck transmission: %v\n", err)
	}
	engine.state.CompareAndSwap(uint32(StateTransmitting), uint32(StateListening))
}

// Applies finished transmissions posted by the completion handler
func (engine *Engine) drainCompletionsLocked() {
	for {
		select {
		case record := <-engine.completions:
			engine.applyCompletionLocked(record)
		default:
			return
		}
	}
}

// A finished no-ack transmission is its terminal outcome
func (engine *Engine) applyCompletionLocked(record txRecord) {
	if !record.queued || record.reqAck {
		return
	}
	index := engine.sendQueue.find(record.seq)
	if index < 0 || engine.sendQueue.slots[index].RequiresAck {
		return
	}
	engine.sendQueue.slots[index].Acknowledged = true
	engine.resolveLocked(index)

	logctx.LogEvent(engine.ctx, global.VerbosityData, global.InfoLog,
		"Sequence %d sent (no acknowledgement required)\n", record.seq)
}
