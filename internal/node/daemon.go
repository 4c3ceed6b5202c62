// Node daemon: radio, reliability engine, command relay, telemetry and local outputs
package node

import (
	"context"
	"fmt"
	"loracom/internal/atomics"
	"loracom/internal/commander"
	"loracom/internal/externalio"
	"loracom/internal/externalio/beats"
	"loracom/internal/externalio/console"
	"loracom/internal/externalio/file"
	"loracom/internal/externalio/history"
	"loracom/internal/externalio/journald"
	"loracom/internal/externalio/server"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"loracom/internal/loracom"
	nodemetrics "loracom/internal/node/metrics"
	"loracom/internal/queue/mpmc"
	"loracom/internal/radio"
	"loracom/internal/status"
	"loracom/pkg/protocol"
	"net/http"
	"os"
	"time"
	"unsafe"
)

// Create new node daemon instance
func NewDaemon(cfg Config) (new *Daemon) {
	ctx, cancel := context.WithCancel(context.Background())
	new = &Daemon{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	return
}

// Starts node components in background - gracefully shuts down if startup error is encountered
func (daemon *Daemon) Start(globalCtx context.Context) (err error) {
	daemon.globalCtx = globalCtx

	// New context for the daemon
	daemon.ctx, daemon.cancel = context.WithCancel(context.Background())
	daemon.ctx = logctx.WithLogger(daemon.ctx, logctx.GetLogger(globalCtx))

	// Top level tag for daemon logs
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSNode)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	// Pre-startup
	daemon.cfg.setDefaults()

	global.Hostname, err = os.Hostname()
	if err != nil {
		err = fmt.Errorf("failed to determine local hostname: %w", err)
		return
	}

	err = daemon.startComponents()
	if err != nil {
		daemon.stopComponents()
		return
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Startup complete. Device %d on %s radio.\n", daemon.cfg.DeviceID, daemon.cfg.Radio.Transport)
	return
}

func (daemon *Daemon) startComponents() (err error) {
	workerCtx := daemon.ctx

	// Radio and engine
	radioCtx := logctx.AppendCtxTag(daemon.ctx, global.NSRadio)
	transceiver, err := radio.Open(radioCtx, daemon.cfg.Radio)
	if err != nil {
		err = fmt.Errorf("failed to open radio: %w", err)
		return
	}

	engine, err := loracom.New(daemon.ctx, transceiver, loracom.Config{
		DeviceID:   daemon.cfg.DeviceID,
		MaxRetries: daemon.cfg.MaxRetries,
		AckTimeout: daemon.cfg.AckTimeout,
		TxTimeout:  daemon.cfg.TxTimeout,
		QueueSize:  daemon.cfg.QueueSize,
	})
	if err != nil {
		transceiver.Close()
		return
	}
	err = engine.Begin()
	if err != nil {
		transceiver.Close()
		return
	}

	tags := logctx.GetTagList(daemon.ctx)
	inboxNS := append(tags[:len(tags):len(tags)], global.NSInbox)
	inbox, err := mpmc.New[inbound](inboxNS, daemon.cfg.InboxSize, uint64(unsafe.Sizeof(inbound{})))
	if err != nil {
		engine.Stop()
		transceiver.Close()
		err = fmt.Errorf("failed to create inbox: %w", err)
		return
	}

	daemon.mutex.Lock()
	daemon.radio = transceiver
	daemon.engine = engine
	daemon.inbox = inbox
	daemon.tracker = newTracker(engine, daemon.cfg.DeviceID)
	daemon.mutex.Unlock()

	// Local outputs
	daemon.beats, err = beats.NewOutput(daemon.cfg.BeatsAddress)
	if err != nil {
		return
	}
	daemon.journal, err = journald.NewOutput(daemon.cfg.JournaldURL)
	if err != nil {
		return
	}
	daemon.history, err = history.NewOutput(daemon.cfg.HistoryPath)
	if err != nil {
		return
	}
	daemon.events, err = file.NewOutput(daemon.cfg.EventLogPath)
	if err != nil {
		return
	}

	// Telemetry and command execution
	daemon.sampler, err = status.NewStaticSampler(daemon.cfg.Battery, daemon.cfg.Inputs)
	if err != nil {
		err = fmt.Errorf("invalid status configuration: %w", err)
		return
	}
	outputs := commander.NewOutputBank()
	tuner, _ := radio.TunerOf(transceiver)

	daemon.producer, err = status.NewProducer(daemon.ctx, status.Config{
		Sender:   engine,
		Sampler:  daemon.sampler,
		Outputs:  outputs,
		Interval: daemon.cfg.StatusInterval,
		OnSent:   daemon.statusSent,
	})
	if err != nil {
		return
	}
	daemon.commander = commander.New(daemon.ctx, commander.Config{
		Tuner:      tuner,
		Outputs:    outputs,
		Calibrator: daemon.sampler,
		Update: func() (err error) {
			_, err = daemon.producer.SendNow()
			return
		},
	})

	// Console
	if daemon.cfg.ConsoleEnabled {
		daemon.console, err = console.New(daemon.ctx, console.Config{
			SerialPort: daemon.cfg.ConsolePort,
			SerialBaud: daemon.cfg.ConsoleBaud,
			Receiver:   daemon.cfg.DefaultReceiver,
			Submit:     daemon.SubmitCommand,
		})
		if err != nil {
			return
		}
	}

	// Workers
	daemon.wg.Add(2)
	go func() {
		defer daemon.wg.Done()
		daemon.serviceLoop(workerCtx)
	}()
	go func() {
		defer daemon.wg.Done()
		daemon.dispatchLoop(workerCtx)
	}()
	if daemon.cfg.StatusEnabled {
		daemon.wg.Add(1)
		go func() {
			defer daemon.wg.Done()
			daemon.producer.Run(workerCtx)
		}()
	}
	if daemon.console != nil {
		// Not tracked, reading stdin cannot be interrupted
		go daemon.console.Run(workerCtx)
	}

	// Metrics Collector
	daemon.metricsCollector = nodemetrics.New(daemon.cfg.MetricCollectionInterval, daemon.cfg.MetricMaxAge,
		engine,
		inbox,
		daemon.tracker,
		daemon.producer,
		daemon.console,
		daemon.journal,
		daemon.history,
		daemon.events,
	)
	daemon.wg.Add(1)
	go func() {
		defer daemon.wg.Done()
		daemon.metricsCollector.Run(workerCtx)
	}()

	// API Server
	if daemon.cfg.APIServerEnabled {
		// Top level tag for server logs (copy so return doesn't strip ns tags)
		serverCtx := daemon.ctx
		serverCtx = logctx.AppendCtxTag(serverCtx, global.NSMetric)
		serverCtx = logctx.AppendCtxTag(serverCtx, global.NSMetricSrv)

		registry := daemon.metricsCollector.Registry
		daemon.APIServer, err = server.SetupListener(serverCtx, daemon.cfg.APIServerPort, server.Handlers{
			Search:    registry.Search,
			Discover:  registry.Discover,
			Aggregate: registry.Aggregate,
			Node:      daemon,
		})
		if err != nil {
			err = fmt.Errorf("failed to set up API server: %w", err)
			return
		}
		apiServer := daemon.APIServer
		daemon.wg.Add(1)
		go func() {
			defer daemon.wg.Done()
			server.Start(serverCtx, apiServer)
		}()
	}
	return
}

// Blocking daemon waiter
func (daemon *Daemon) Run() {
	<-daemon.done
}

// Gracefully shutdown node components
func (daemon *Daemon) Shutdown() {
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Daemon shutdown started...\n")

	daemon.stopComponents()
	daemon.stopOnce.Do(func() { close(daemon.done) })
}

// Re-reads the config file (when one was loaded) and restarts every component
func (daemon *Daemon) Reload() (err error) {
	newCfg := daemon.cfg
	if daemon.ConfigPath != "" {
		var jsonCfg JSONConfig
		jsonCfg, err = LoadConfig(daemon.ConfigPath)
		if err != nil {
			return
		}
		newCfg, err = jsonCfg.NewDaemonConf()
		if err != nil {
			return
		}
	}

	daemon.stopComponents()
	daemon.cfg = newCfg
	err = daemon.Start(daemon.globalCtx)
	if err != nil {
		err = fmt.Errorf("failed to restart after reload: %w", err)
	}
	return
}

func (daemon *Daemon) stopComponents() {
	// Stop API server
	if daemon.APIServer != nil {
		err := daemon.APIServer.Shutdown(daemon.ctx)
		if err != nil && err != http.ErrServerClosed {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"HTTP API server did not shutdown gracefully: %v\n", err)
		}
		daemon.APIServer = nil
	}

	// Stop accepting console input
	if daemon.console != nil {
		err := daemon.console.Shutdown()
		if err != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"console did not close: %v\n", err)
		}
	}

	// Let the dispatcher finish what was already received
	if daemon.inbox != nil {
		success, last := atomics.WaitUntilZero(&daemon.inbox.Metrics.Depth, global.NodeShutdownTimeout)
		if !success {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"inbox did not empty in time: dropped %d messages\n", last)
		}
	}

	// Stop the workers
	daemon.cancel()

	// Wait for all workers to finish (with timeout)
	done := make(chan struct{})
	go func() {
		daemon.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(global.NodeShutdownTimeout):
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Timeout: node workers did not stop within %v seconds\n",
			global.NodeShutdownTimeout.Seconds())
	}

	// Release the radio and outputs
	daemon.mutex.Lock()
	if daemon.engine != nil {
		daemon.engine.Stop()
		daemon.engine = nil
		daemon.tracker = nil
	}
	if daemon.radio != nil {
		err := daemon.radio.Close()
		if err != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"radio did not close cleanly: %v\n", err)
		}
		daemon.radio = nil
	}
	daemon.mutex.Unlock()

	outputs := []struct {
		name     string
		shutdown func() error
	}{
		{"beats", daemon.beats.Shutdown},
		{"journald", daemon.journal.Shutdown},
		{"history", daemon.history.Shutdown},
		{"event log", daemon.events.Shutdown},
	}
	for _, output := range outputs {
		err := output.shutdown()
		if err != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"%s output did not close cleanly: %v\n", output.name, err)
		}
	}
	daemon.beats = nil
	daemon.journal = nil
	daemon.history = nil
	daemon.events = nil
	daemon.console = nil
	daemon.inbox = nil

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Node components stopped\n")
}

// Queues a "<id> <param>" command line for acknowledged delivery to receiver
func (daemon *Daemon) SubmitCommand(line string, receiver uint8) (seq uint8, err error) {
	engine, tracker := daemon.parts()
	if engine == nil {
		err = loracom.ErrNotStarted
		return
	}

	cmd, err := protocol.ParseCommand(line)
	if err != nil {
		return
	}
	msg, err := protocol.NewCommandMessage(daemon.cfg.DeviceID, receiver, cmd)
	if err != nil {
		return
	}
	err = engine.EnqueueMessage(&msg, true)
	if err != nil {
		err = fmt.Errorf("failed to queue command: %w", err)
		return
	}
	seq = msg.SequenceID
	tracker.track(seq, receiver, cmd, time.Now())

	logctx.LogEvent(daemon.ctx, global.VerbosityProgress, global.InfoLog,
		"Queued command '%s' to device %d as sequence %d\n", cmd, receiver, seq)
	return
}

func (daemon *Daemon) Snapshot() (snapshot loracom.Snapshot) {
	engine, _ := daemon.parts()
	if engine == nil {
		return
	}
	snapshot = engine.Snapshot()
	return
}

func (daemon *Daemon) Outcome(seq uint8) (outcome loracom.Outcome) {
	engine, _ := daemon.parts()
	if engine == nil {
		return
	}
	outcome = engine.Outcome(seq)
	return
}

// Metric registry of the running node
func (daemon *Daemon) Registry() (gatherer *nodemetrics.Gatherer) {
	gatherer = daemon.metricsCollector
	return
}

func (daemon *Daemon) parts() (engine *loracom.Engine, tracker *tracker) {
	daemon.mutex.RLock()
	engine = daemon.engine
	tracker = daemon.tracker
	daemon.mutex.RUnlock()
	return
}

// Prints this node's own status broadcasts on the console
func (daemon *Daemon) statusSent(msg protocol.Message) {
	if daemon.console == nil {
		return
	}
	payload, err := msg.Status()
	if err != nil {
		return
	}
	daemon.console.PrintStatus(externalio.StatusReport{
		Timestamp: time.Now(),
		DeviceID:  daemon.cfg.DeviceID,
		SenderID:  daemon.cfg.DeviceID,
		Status:    payload,
	})
}
