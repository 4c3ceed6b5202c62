package console

import (
	"context"
	"fmt"
	"io"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"os"

	"go.bug.st/serial"
	"golang.org/x/term"
)

// Opens the console on the configured serial port, or on stdio when none is set
func New(ctx context.Context, cfg Config) (console *Console, err error) {
	if cfg.Submit == nil {
		err = fmt.Errorf("console requires a command submitter")
		return
	}

	ctx = logctx.AppendCtxTag(ctx, global.NSConsole)

	if cfg.SerialPort == "" {
		console = newConsole(ctx, os.Stdin, os.Stdout, nil, "stdio", cfg)
		console.prompt = term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		return
	}

	baud := cfg.SerialBaud
	if baud == 0 {
		baud = global.DefaultSerialBaud
	}
	port, err := serial.Open(cfg.SerialPort, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		err = fmt.Errorf("failed to open console on %s: %w", cfg.SerialPort, err)
		return
	}
	console = newConsole(ctx, port, port, port, cfg.SerialPort, cfg)
	return
}

func newConsole(ctx context.Context, in io.Reader, out io.Writer, closer io.Closer, name string, cfg Config) (console *Console) {
	console = &Console{
		ctx:       ctx,
		Namespace: logctx.GetTagList(ctx),
		name:      name,
		in:        in,
		out:       out,
		closer:    closer,
		receiver:  cfg.Receiver,
		submit:    cfg.Submit,
	}
	return
}

// Closes the serial port, unblocking Run
func (console *Console) Shutdown() (err error) {
	if console == nil || console.closer == nil {
		return
	}
	err = console.closer.Close()
	return
}
