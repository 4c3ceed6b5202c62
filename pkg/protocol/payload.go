package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Serializes command into its fixed size body (id, param type, 128 byte union region)
func ConstructCommand(cmd CommandPayload) (body []byte, err error) {
	var buf bytes.Buffer
	buf.Grow(CommandSize)

	if err = buf.WriteByte(cmd.CommandID); err != nil {
		err = fmt.Errorf("failed to serialize CommandID: %v", err)
		return
	}
	if err = buf.WriteByte(uint8(cmd.ParamType)); err != nil {
		err = fmt.Errorf("failed to serialize ParamType: %v", err)
		return
	}

	var region [lenParamRegion]byte
	switch cmd.ParamType {
	case ParamFloat:
		byteOrder.PutUint32(region[:4], math.Float32bits(cmd.Float))
	case ParamString:
		text := cmd.Text
		if len(text) > MaxCommandText {
			text = text[:MaxCommandText]
		}
		copy(region[:], text)
		region[len(text)] = terminatorByte
	default:
		err = fmt.Errorf("failed to serialize parameter: unknown parameter type %d", cmd.ParamType)
		return
	}

	if _, err = buf.Write(region[:]); err != nil {
		err = fmt.Errorf("failed to serialize parameter: %v", err)
		return
	}

	body = buf.Bytes()
	return
}

// Parses command body
func DeconstructCommand(body []byte) (cmd CommandPayload, err error) {
	if len(body) < lenCommandID+lenParamType {
		err = fmt.Errorf("%w: command body has %d bytes", ErrShortFrame, len(body))
		return
	}

	cmd.CommandID = body[0]
	cmd.ParamType = ParamType(body[1])
	region := body[lenCommandID+lenParamType:]

	switch cmd.ParamType {
	case ParamFloat:
		if len(region) < 4 {
			err = fmt.Errorf("%w: float parameter has %d bytes", ErrShortFrame, len(region))
			return
		}
		cmd.Float = math.Float32frombits(byteOrder.Uint32(region[:4]))
	case ParamString:
		if len(region) > lenParamRegion {
			region = region[:lenParamRegion]
		}
		end := bytes.IndexByte(region, terminatorByte)
		if end < 0 {
			end = len(region)
		}
		if end > MaxCommandText {
			end = MaxCommandText
		}
		cmd.Text = string(region[:end])
	default:
		err = fmt.Errorf("invalid command parameter type %d", body[1])
		return
	}
	return
}

// Serializes status snapshot
func ConstructStatus(status StatusPayload) (body []byte, err error) {
	var buf bytes.Buffer
	buf.Grow(StatusSize)

	if err = binary.Write(&buf, byteOrder, status.RSSI); err != nil {
		err = fmt.Errorf("failed to serialize RSSI: %v", err)
		return
	}
	if err = binary.Write(&buf, byteOrder, status.BatteryVoltage); err != nil {
		err = fmt.Errorf("failed to serialize BatteryVoltage: %v", err)
		return
	}
	if err = binary.Write(&buf, byteOrder, uint8(status.Status)); err != nil {
		err = fmt.Errorf("failed to serialize Status: %v", err)
		return
	}
	if err = binary.Write(&buf, byteOrder, status.Inputs); err != nil {
		err = fmt.Errorf("failed to serialize Inputs: %v", err)
		return
	}

	body = buf.Bytes()
	return
}

// Parses status body
func DeconstructStatus(body []byte) (status StatusPayload, err error) {
	if len(body) < StatusSize {
		err = fmt.Errorf("%w: status body has %d bytes, need %d", ErrShortFrame, len(body), StatusSize)
		return
	}

	reader := bytes.NewReader(body[:StatusSize])

	if err = binary.Read(reader, byteOrder, &status.RSSI); err != nil {
		err = fmt.Errorf("failed to deserialize RSSI: %v", err)
		return
	}
	if err = binary.Read(reader, byteOrder, &status.BatteryVoltage); err != nil {
		err = fmt.Errorf("failed to deserialize BatteryVoltage: %v", err)
		return
	}
	var code uint8
	if err = binary.Read(reader, byteOrder, &code); err != nil {
		err = fmt.Errorf("failed to deserialize Status: %v", err)
		return
	}
	status.Status = StatusCode(code)
	if err = binary.Read(reader, byteOrder, &status.Inputs); err != nil {
		err = fmt.Errorf("failed to deserialize Inputs: %v", err)
		return
	}
	return
}
