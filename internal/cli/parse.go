package cli

import (
	"encoding/hex"
	"flag"
	"fmt"
	"loracom/internal/global"
	"loracom/pkg/protocol"
	"os"
	"strings"
)

func ParseMode(commandname string, args []string) {
	var frameHex string
	var sender int
	var receiver int

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	commandFlags.StringVar(&frameHex, "x", "", "Hex encoded frame to decode")
	commandFlags.StringVar(&frameHex, "hex", "", "Hex encoded frame to decode")
	commandFlags.IntVar(&sender, "from", int(global.DefaultDeviceID), "Sender id for an encoded command")
	commandFlags.IntVar(&receiver, "to", int(protocol.BroadcastID), "Receiver id for an encoded command")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args)

	var output string
	var err error
	if frameHex != "" {
		output, err = describeFrame(frameHex)
	} else {
		output, err = encodeCommand(strings.Join(commandFlags.Args(), " "), sender, receiver)
	}
	if err != nil {
		fatal("%v", err)
	}
	fmt.Print(output)
}

// Human readable header and body of a hex frame
func describeFrame(frameHex string) (text string, err error) {
	frame, err := hex.DecodeString(strings.Join(strings.Fields(frameHex), ""))
	if err != nil {
		err = fmt.Errorf("invalid hex frame: %w", err)
		return
	}
	msg, err := protocol.DeconstructFrame(frame)
	if err != nil {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "type:%s from:%d to:%d seq:%d length:%d\n",
		msg.Type, msg.SenderID, msg.ReceiverID, msg.SequenceID, msg.Length)

	switch msg.Type {
	case protocol.TypeCommand:
		var cmd protocol.CommandPayload
		cmd, err = msg.Command()
		if err != nil {
			return
		}
		fmt.Fprintf(&b, "command %s\n", cmd)
	case protocol.TypeStatus:
		var status protocol.StatusPayload
		status, err = msg.Status()
		if err != nil {
			return
		}
		b.WriteString(protocol.FormatStatusLine(msg.SenderID, status))
		fmt.Fprintf(&b, "state:%s inputs:%v\n", status.Status, status.Inputs)
	case protocol.TypeAck:
		var ack protocol.AckPayload
		ack, err = msg.Ack()
		if err != nil {
			return
		}
		fmt.Fprintf(&b, "ack seq:%d\n", ack.AcknowledgedSequenceID)
	}
	text = b.String()
	return
}

// Hex frame for a command line
func encodeCommand(line string, sender, receiver int) (text string, err error) {
	if sender < 0 || sender > int(protocol.BroadcastID) || receiver < 0 || receiver > int(protocol.BroadcastID) {
		err = fmt.Errorf("device ids must be within 0-%d", protocol.BroadcastID)
		return
	}
	cmd, err := protocol.ParseCommand(line)
	if err != nil {
		return
	}
	msg, err := protocol.NewCommandMessage(uint8(sender), uint8(receiver), cmd)
	if err != nil {
		return
	}
	frame, err := protocol.ConstructFrame(msg)
	if err != nil {
		return
	}
	text = hex.EncodeToString(frame) + "\n"
	return
}
