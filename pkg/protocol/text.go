package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Converts a "<commandID> <param>" line into a command payload.
// The parameter is a float only when the whole remainder parses as one, otherwise it is kept as text.
// Numbers beyond float32 range still count as floats and saturate to +/-Inf.
func ParseCommand(line string) (cmd CommandPayload, err error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		err = ErrEmptyCommand
		return
	}

	rawID, param, found := strings.Cut(line, " ")
	if !found {
		err = fmt.Errorf("%w: '%s'", ErrNoParameter, line)
		return
	}
	if param == "" {
		err = fmt.Errorf("%w: '%s'", ErrNoParameter, line)
		return
	}

	id, err := strconv.ParseUint(rawID, 10, 8)
	if err != nil {
		err = fmt.Errorf("%w: '%s'", ErrBadCommandID, rawID)
		return
	}
	cmd.CommandID = uint8(id)

	value, parseErr := strconv.ParseFloat(param, 32)
	if parseErr == nil || errors.Is(parseErr, strconv.ErrRange) {
		cmd.ParamType = ParamFloat
		cmd.Float = float32(value)
		return
	}

	cmd.ParamType = ParamString
	if len(param) > MaxCommandText {
		param = param[:MaxCommandText]
	}
	cmd.Text = param
	return
}

// Renders command back into its text line form
func (cmd CommandPayload) String() string {
	if cmd.ParamType == ParamFloat {
		return fmt.Sprintf("%d %s", cmd.CommandID, strconv.FormatFloat(float64(cmd.Float), 'g', -1, 32))
	}
	return fmt.Sprintf("%d %s", cmd.CommandID, cmd.Text)
}

// Line printed for a received status message (read by the desktop monitor)
func FormatStatusLine(senderID uint8, status StatusPayload) (line string) {
	line = fmt.Sprintf("status ID:%d RSSI:%d battVoltage:%.2f status:%d\n",
		senderID, status.RSSI, status.BatteryVoltage, status.Status)
	return
}

func (code StatusCode) String() string {
	switch code {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusBusy:
		return "busy"
	case StatusNoConnection:
		return "no-connection"
	default:
		return fmt.Sprintf("code(%d)", uint8(code))
	}
}
