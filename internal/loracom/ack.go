package loracom

import (
	"loracom/internal/global"
	"loracom/internal/logctx"
)

// Resolves the live entry waiting on seq. Late and duplicate acks are ignored.
func (engine *Engine) HandleAck(seq uint8) {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.drainCompletionsLocked()
	engine.handleAckLocked(seq)
	engine.sendQueue.compact()
}

func (engine *Engine) handleAckLocked(seq uint8) (matched bool) {
	index := engine.sendQueue.find(seq)
	if index < 0 {
		engine.Metrics.StaleAcks.Add(1)
		logctx.LogEvent(engine.ctx, global.VerbosityDebug, global.InfoLog,
			"Ignoring ack for sequence %d (not pending)\n", seq)
		return
	}

	entry := &engine.sendQueue.slots[index]
	entry.Acknowledged = true
	entry.Failed = false
	engine.resolveLocked(index)
	matched = true

	logctx.LogEvent(engine.ctx, global.VerbosityProgress, global.InfoLog,
		"Sequence %d acknowledged by %d after %d transmissions\n",
		seq, entry.Msg.ReceiverID, entry.RetryCount)
	return
}

func (engine *Engine) IsAcked(seq uint8) (acked bool) {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.drainCompletionsLocked()

	entry, found := engine.doneQueue.find(seq)
	acked = found && entry.Acknowledged
	return
}

func (engine *Engine) IsFailed(seq uint8) (failed bool) {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.drainCompletionsLocked()

	entry, found := engine.doneQueue.find(seq)
	failed = found && entry.Failed
	return
}

func (engine *Engine) IsQueued(seq uint8) (queued bool) {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.drainCompletionsLocked()

	queued = engine.sendQueue.find(seq) >= 0
	return
}

// Combined view of IsQueued, IsAcked and IsFailed
func (engine *Engine) Outcome(seq uint8) (outcome Outcome) {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.drainCompletionsLocked()

	if engine.sendQueue.find(seq) >= 0 {
		outcome = OutcomeQueued
		return
	}
	entry, found := engine.doneQueue.find(seq)
	switch {
	case !found:
		outcome = OutcomeUnknown
	case entry.Acknowledged:
		outcome = OutcomeAcked
	case entry.Failed:
		outcome = OutcomeFailed
	}
	return
}
