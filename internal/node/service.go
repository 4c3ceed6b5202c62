package node

import (
	"context"
	"loracom/internal/commander"
	"loracom/internal/externalio"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"loracom/internal/loracom"
	"loracom/pkg/protocol"
	"time"
)

// Frames read from the engine per service tick
const maxReadsPerTick int = 8

// Drives the engine: retries and transmissions, then receive polling, then outcome tracking
func (daemon *Daemon) serviceLoop(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSService)

	ticker := time.NewTicker(daemon.cfg.ServiceTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			daemon.serviceOnce(ctx, now)
		}
	}
}

func (daemon *Daemon) serviceOnce(ctx context.Context, now time.Time) {
	daemon.engine.ProcessSendQueue()

	for i := 0; i < maxReadsPerTick; i++ {
		msg, ok, err := daemon.engine.GetMessage()
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityData, global.WarnLog, "Dropped received frame: %v\n", err)
			continue
		}
		if !ok {
			break
		}

		item := inbound{msg: msg, rssi: daemon.engine.RSSI(), received: now}
		if !daemon.inbox.Push(item) {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Inbox full, dropped %s sequence %d from device %d\n", msg.Type, msg.SequenceID, msg.SenderID)
		}
	}

	for _, report := range daemon.tracker.poll(now) {
		daemon.completeDelivery(ctx, report)
	}

	_, err := daemon.events.FlushBuffer()
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "%v\n", err)
	}
}

// Consumes received messages until ctx ends
func (daemon *Daemon) dispatchLoop(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSReceive)

	for {
		item, ok := daemon.inbox.Pop(ctx)
		if !ok {
			return
		}
		daemon.dispatch(ctx, item)
	}
}

func (daemon *Daemon) dispatch(ctx context.Context, item inbound) {
	switch item.msg.Type {
	case protocol.TypeCommand:
		cmd, err := item.msg.Command()
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Undecodable command from device %d: %v\n", item.msg.SenderID, err)
			return
		}
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"Command '%s' from device %d (sequence %d)\n", cmd, item.msg.SenderID, item.msg.SequenceID)
		daemon.runCommand(ctx, cmd)
	case protocol.TypeStatus:
		payload, err := item.msg.Status()
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Undecodable status from device %d: %v\n", item.msg.SenderID, err)
			return
		}
		daemon.publishStatus(ctx, externalio.StatusReport{
			Timestamp: item.received,
			DeviceID:  daemon.cfg.DeviceID,
			SenderID:  item.msg.SenderID,
			FrameRSSI: item.rssi,
			Status:    payload,
		})
	}
}

// Runs a command on this node and prints the reply
func (daemon *Daemon) runCommand(ctx context.Context, cmd protocol.CommandPayload) {
	reply, err := daemon.commander.Run(cmd)
	if err != nil {
		daemon.console.PrintReply("error: " + err.Error())
		return
	}
	daemon.console.PrintReply(reply)
}

func (daemon *Daemon) publishStatus(ctx context.Context, report externalio.StatusReport) {
	daemon.console.PrintStatus(report)

	_, err := daemon.beats.WriteStatus(ctx, report)
	logOutputErr(ctx, err)
	_, err = daemon.journal.WriteStatus(ctx, report)
	logOutputErr(ctx, err)
	err = daemon.history.WriteStatus(ctx, report)
	logOutputErr(ctx, err)
	_, err = daemon.events.WriteStatus(report)
	logOutputErr(ctx, err)
}

func logOutputErr(ctx context.Context, err error) {
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "%v\n", err)
	}
}

// Records a relayed command's outcome, running it locally once the receiver has it
func (daemon *Daemon) completeDelivery(ctx context.Context, report externalio.DeliveryReport) {
	ctx = logctx.AppendCtxTag(ctx, global.NSTracker)

	severity := global.InfoLog
	if report.Outcome != loracom.OutcomeAcked.String() {
		severity = global.WarnLog
	}
	logctx.LogEvent(ctx, global.VerbosityProgress, severity,
		"Command '%s' to device %d (sequence %d) %s after %s\n",
		report.Command, report.Receiver, report.Sequence, report.Outcome, report.Latency.Round(time.Millisecond))

	daemon.console.PrintDelivery(report)

	if daemon.cfg.ApplyLocally && report.Outcome == loracom.OutcomeAcked.String() && appliesLocally(report.Command) {
		daemon.runCommand(ctx, report.Command)
	}

	_, err := daemon.beats.WriteDelivery(ctx, report)
	logOutputErr(ctx, err)
	_, err = daemon.journal.WriteDelivery(ctx, report)
	logOutputErr(ctx, err)
	err = daemon.history.WriteDelivery(ctx, report)
	logOutputErr(ctx, err)
	_, err = daemon.events.WriteDelivery(report)
	logOutputErr(ctx, err)
}

// Commands mirrored on the relaying node. Help only produces text for the sender.
func appliesLocally(cmd protocol.CommandPayload) (applies bool) {
	applies = commander.ID(cmd.CommandID) != commander.Help
	return
}
