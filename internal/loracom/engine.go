package loracom

import (
	"context"
	"fmt"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"loracom/internal/radio"
	"time"
)

// Largest queue keeping send and done entries within the sequence ID space
const MaxQueueSize int = 127

// Engine configuration from the node defaults
func DefaultConfig(deviceID uint8) (cfg Config) {
	cfg = Config{
		DeviceID:   deviceID,
		MaxRetries: global.DefaultMaxRetries,
		AckTimeout: global.DefaultAckTimeout,
		TxTimeout:  global.DefaultTxTimeout,
		QueueSize:  global.DefaultQueueSize,
	}
	return
}

func (cfg Config) validate() (err error) {
	if cfg.MaxRetries < 1 || cfg.MaxRetries > 255 {
		err = fmt.Errorf("max retries must be between 1 and 255, got %d", cfg.MaxRetries)
		return
	}
	if cfg.AckTimeout <= 0 {
		err = fmt.Errorf("ack timeout must be positive, got %s", cfg.AckTimeout)
		return
	}
	if cfg.TxTimeout <= 0 {
		err = fmt.Errorf("transmit timeout must be positive, got %s", cfg.TxTimeout)
		return
	}
	if cfg.QueueSize < 1 || cfg.QueueSize > MaxQueueSize {
		err = fmt.Errorf("queue size must be between 1 and %d, got %d", MaxQueueSize, cfg.QueueSize)
		return
	}
	if cfg.DeviceID == 0xFF {
		err = fmt.Errorf("device ID 255 is reserved for broadcast")
		return
	}
	return
}

// Creates an engine bound to the radio. Nothing is armed until Begin.
func New(ctx context.Context, transceiver radio.Transceiver, cfg Config) (engine *Engine, err error) {
	if transceiver == nil {
		err = fmt.Errorf("engine requires a radio")
		return
	}
	err = cfg.validate()
	if err != nil {
		err = fmt.Errorf("invalid engine configuration: %w", err)
		return
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}

	engineCtx := logctx.AppendCtxTag(ctx, global.NSEngine)
	engine = &Engine{
		ctx:         engineCtx,
		Namespace:   logctx.GetTagList(engineCtx),
		cfg:         cfg,
		radio:       transceiver,
		clock:       cfg.Clock,
		sendQueue:   newSendRing(cfg.QueueSize),
		doneQueue:   newDoneRing(cfg.QueueSize),
		completions: make(chan txRecord, cfg.QueueSize+4),
	}
	return
}

// Registers the completion handler and arms receive
func (engine *Engine) Begin() (err error) {
	if engine.State() != StateIdle {
		return
	}
	engine.radio.OnComplete(engine.onComplete)
	err = engine.radio.StartReceive()
	if err != nil {
		engine.radio.OnComplete(nil)
		err = fmt.Errorf("failed to arm radio receive: %w", err)
		return
	}
	engine.state.Store(uint32(StateListening))
	logctx.LogEvent(engine.ctx, global.VerbosityProgress, global.InfoLog,
		"Engine started as device %d (queue %d, retries %d, ack timeout %s)\n",
		engine.cfg.DeviceID, engine.cfg.QueueSize, engine.cfg.MaxRetries, engine.cfg.AckTimeout)
	return
}

// Detaches from the radio. Queued entries stay readable.
func (engine *Engine) Stop() {
	engine.radio.OnComplete(nil)
	engine.state.Store(uint32(StateIdle))
}

// Radio interrupt handler, runs on a transport goroutine.
// Never touches the queues, finished transmissions are posted for the task side.
func (engine *Engine) onComplete(kind radio.Completion) {
	switch kind {
	case radio.RxDone:
		engine.rxPending.Store(true)
	case radio.TxDone:
		if engine.State() != StateTransmitting {
			return
		}

		err := engine.radio.FinishTransmit()
		if err != nil {
			logctx.LogEvent(engine.ctx, global.VerbosityStandard, global.ErrorLog,
				"failed to finish transmission: %v\n", err)
		}
		err = engine.radio.StartReceive()
		if err != nil {
			logctx.LogEvent(engine.ctx, global.VerbosityStandard, global.ErrorLog,
				"failed to re-arm receive after transmission: %v\n", err)
		}

		record := engine.current.Swap(nil)
		if record != nil {
			select {
			case engine.completions <- *record:
			default:
				engine.Metrics.CompletionOverflow.Add(1)
			}
		}

		// Completion is queued before a sender can observe Listening
		engine.state.CompareAndSwap(uint32(StateTransmitting), uint32(StateListening))
	}
}

func (engine *Engine) State() (state State) {
	state = State(engine.state.Load())
	return
}

// Signal strength of the last frame read by GetMessage
func (engine *Engine) RSSI() (rssi int) {
	rssi = int(engine.lastRSSI.Load())
	return
}

func (engine *Engine) Radio() (transceiver radio.Transceiver) {
	transceiver = engine.radio
	return
}

func (engine *Engine) DeviceID() (id uint8) {
	id = engine.cfg.DeviceID
	return
}

func (engine *Engine) Config() (cfg Config) {
	cfg = engine.cfg
	return
}

func (engine *Engine) Snapshot() (snapshot Snapshot) {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.drainCompletionsLocked()
	engine.sendQueue.compact()

	snapshot = Snapshot{
		State:   engine.State(),
		NextSeq: engine.nextSeq,
		Live:    engine.sendQueue.pending(),
		Done:    engine.doneQueue.entries(),
	}
	return
}

// Live and done queue depths
func (engine *Engine) Depths() (live int, done int) {
	engine.mutex.Lock()
	live = engine.sendQueue.count
	done = engine.doneQueue.count
	engine.mutex.Unlock()
	return
}

// Next sequence ID not held by either queue. At most 2*MaxQueueSize IDs are
// retained, so a free one always exists.
func (engine *Engine) allocateSeqLocked() (seq uint8) {
	for i := 0; i < 256; i++ {
		seq = engine.nextSeq
		engine.nextSeq++
		if !engine.seqRetainedLocked(seq) {
			return
		}
	}
	return
}

func (engine *Engine) seqRetainedLocked(seq uint8) (retained bool) {
	for i := 0; i < engine.sendQueue.count; i++ {
		if engine.sendQueue.slots[engine.sendQueue.slot(i)].Msg.SequenceID == seq {
			retained = true
			return
		}
	}
	_, retained = engine.doneQueue.find(seq)
	return
}

// Moves the live entry to the done queue. Compaction is left to the caller.
func (engine *Engine) resolveLocked(index int) {
	entry := engine.sendQueue.slots[index]
	engine.sendQueue.resolved[index] = true
	engine.doneQueue.push(entry)

	if entry.Failed {
		engine.Metrics.Failed.Add(1)
	} else {
		engine.Metrics.Acked.Add(1)
	}
}

func (engine *Engine) sinceTx() (elapsed time.Duration) {
	elapsed = time.Duration(time.Now().UnixNano() - engine.txSince.Load())
	return
}
