package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"loracom/internal/externalio"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"loracom/pkg/protocol"
	"strconv"
	"strings"
)

// Reads command lines until ctx is done or input ends.
// "<id> <param>" goes to the default receiver, "@<device> <id> <param>" to a chosen one.
func (console *Console) Run(ctx context.Context) {
	logctx.LogEvent(console.ctx, global.VerbosityStandard, global.InfoLog,
		"Command console reading from %s\n", console.name)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(console.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		err := scanner.Err()
		if err != nil && ctx.Err() == nil {
			logctx.LogEvent(console.ctx, global.VerbosityStandard, global.WarnLog,
				"Console input on %s ended: %v\n", console.name, err)
		}
	}()

	console.showPrompt()
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			console.handleLine(line)
			console.showPrompt()
		}
	}
}

func (console *Console) handleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	console.Metrics.LinesRead.Add(1)

	receiver, command, err := splitTarget(line, console.receiver)
	if err != nil {
		console.Metrics.Rejected.Add(1)
		console.writeLine(fmt.Sprintf("error: %v\n", err))
		return
	}

	seq, err := console.submit(command, receiver)
	if err != nil {
		console.Metrics.Rejected.Add(1)
		console.writeLine(fmt.Sprintf("error: %v\n", err))
		return
	}
	console.Metrics.Submitted.Add(1)
	console.writeLine(fmt.Sprintf("queued seq:%d to:%d cmd:%s\n", seq, receiver, command))
}

// Peels an optional @<device> prefix off a command line
func splitTarget(line string, fallback uint8) (receiver uint8, command string, err error) {
	receiver = fallback
	command = line
	if !strings.HasPrefix(line, "@") {
		return
	}

	rawTarget, rest, found := strings.Cut(line[1:], " ")
	if !found {
		err = fmt.Errorf("missing command after target '%s'", line)
		return
	}
	id, err := strconv.ParseUint(rawTarget, 10, 8)
	if err != nil {
		err = fmt.Errorf("invalid target device '%s'", rawTarget)
		return
	}
	receiver = uint8(id)
	command = strings.TrimSpace(rest)
	if command == "" {
		err = errors.New("empty command")
	}
	return
}

// Prints a received status message in the monitor line format
func (console *Console) PrintStatus(report externalio.StatusReport) {
	if console == nil {
		return
	}
	console.writeLine(protocol.FormatStatusLine(report.SenderID, report.Status))
}

// Prints the terminal outcome of a relayed command
func (console *Console) PrintDelivery(report externalio.DeliveryReport) {
	if console == nil {
		return
	}
	console.writeLine(fmt.Sprintf("%s seq:%d to:%d cmd:%s\n",
		report.Outcome, report.Sequence, report.Receiver, report.Command.String()))
}

// Prints the reply of a locally run command
func (console *Console) PrintReply(reply string) {
	if console == nil || reply == "" {
		return
	}
	if !strings.HasSuffix(reply, "\n") {
		reply += "\n"
	}
	console.writeLine(reply)
}

func (console *Console) writeLine(line string) {
	console.outMutex.Lock()
	defer console.outMutex.Unlock()

	_, err := console.out.Write([]byte(line))
	if err != nil {
		logctx.LogEvent(console.ctx, global.VerbosityStandard, global.WarnLog,
			"Failed writing to console %s: %v\n", console.name, err)
		return
	}
	console.Metrics.LinesWritten.Add(1)
}

func (console *Console) showPrompt() {
	if !console.prompt {
		return
	}
	console.outMutex.Lock()
	console.out.Write([]byte("> "))
	console.outMutex.Unlock()
}
