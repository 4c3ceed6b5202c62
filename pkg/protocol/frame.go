// Wire codec for the fixed size radio frame and its typed payloads
package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Serializes message into a full size frame.
// Unused payload bytes are sent as they are held in the message.
func ConstructFrame(msg Message) (frame []byte, err error) {
	if int(msg.Length) > MaxPayloadSize {
		err = ErrPayloadTooLarge
		return
	}
	if !msg.Type.Valid() {
		err = fmt.Errorf("failed to serialize Type: %w (%d)", ErrUnknownType, msg.Type)
		return
	}

	var buf bytes.Buffer
	buf.Grow(FrameSize)

	header := [HeaderSize]byte{msg.SenderID, msg.ReceiverID, msg.SequenceID, uint8(msg.Type), msg.Length}
	if _, err = buf.Write(header[:]); err != nil {
		err = fmt.Errorf("failed to serialize header: %v", err)
		return
	}
	if _, err = buf.Write(msg.Payload[:]); err != nil {
		err = fmt.Errorf("failed to serialize Payload: %v", err)
		return
	}

	frame = buf.Bytes()
	return
}

// Parses a received frame.
// Frames shorter than FrameSize are accepted as long as they hold the declared payload length.
func DeconstructFrame(frame []byte) (msg Message, err error) {
	if len(frame) < HeaderSize {
		err = fmt.Errorf("%w: got %d bytes", ErrShortFrame, len(frame))
		return
	}

	msg.SenderID = frame[0]
	msg.ReceiverID = frame[1]
	msg.SequenceID = frame[2]
	msg.Type = MessageType(frame[3])
	msg.Length = frame[4]

	if !msg.Type.Valid() {
		err = fmt.Errorf("%w (%d)", ErrUnknownType, frame[3])
		return
	}
	if int(msg.Length) > MaxPayloadSize {
		err = fmt.Errorf("%w: declared length %d", ErrPayloadTooLarge, msg.Length)
		return
	}

	body := frame[HeaderSize:]
	if len(body) < int(msg.Length) {
		err = fmt.Errorf("%w: declared length %d, got %d payload bytes", ErrShortFrame, msg.Length, len(body))
		return
	}
	if len(body) > MaxPayloadSize {
		body = body[:MaxPayloadSize]
	}
	copy(msg.Payload[:], body)
	return
}

// Copies typed payload bytes into the message and sets Length
func (msg *Message) SetPayload(data []byte) (err error) {
	if len(data) > MaxPayloadSize {
		err = ErrPayloadTooLarge
		return
	}
	msg.Payload = [MaxPayloadSize]byte{}
	copy(msg.Payload[:], data)
	msg.Length = uint8(len(data))
	return
}

// Typed payload bytes
func (msg Message) Body() (body []byte) {
	body = msg.Payload[:msg.Length]
	return
}

// Reports whether a device with the given ID should process this message
func (msg Message) AddressedTo(deviceID uint8) (addressed bool) {
	addressed = msg.ReceiverID == deviceID || msg.ReceiverID == BroadcastID
	return
}

func (msgType MessageType) Valid() (valid bool) {
	valid = msgType == TypeStatus || msgType == TypeCommand || msgType == TypeAck
	return
}

func (msgType MessageType) String() string {
	switch msgType {
	case TypeStatus:
		return "status"
	case TypeCommand:
		return "command"
	case TypeAck:
		return "ack"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(msgType))
	}
}

// Builds a command message
func NewCommandMessage(sender, receiver uint8, cmd CommandPayload) (msg Message, err error) {
	body, err := ConstructCommand(cmd)
	if err != nil {
		return
	}
	msg = Message{SenderID: sender, ReceiverID: receiver, Type: TypeCommand}
	err = msg.SetPayload(body)
	return
}

// Builds a status message
func NewStatusMessage(sender, receiver uint8, status StatusPayload) (msg Message, err error) {
	body, err := ConstructStatus(status)
	if err != nil {
		return
	}
	msg = Message{SenderID: sender, ReceiverID: receiver, Type: TypeStatus}
	err = msg.SetPayload(body)
	return
}

// Builds an ack for the given sequence ID (the ack's own sequence ID is assigned by the sender)
func NewAckMessage(sender, receiver, acknowledged uint8) (msg Message) {
	msg = Message{SenderID: sender, ReceiverID: receiver, Type: TypeAck, Length: uint8(AckSize)}
	msg.Payload[0] = acknowledged
	return
}

// Decodes the command body
func (msg Message) Command() (cmd CommandPayload, err error) {
	if msg.Type != TypeCommand {
		err = fmt.Errorf("%w: want command, got %s", ErrWrongType, msg.Type)
		return
	}
	cmd, err = DeconstructCommand(msg.Body())
	return
}

// Decodes the status body
func (msg Message) Status() (status StatusPayload, err error) {
	if msg.Type != TypeStatus {
		err = fmt.Errorf("%w: want status, got %s", ErrWrongType, msg.Type)
		return
	}
	status, err = DeconstructStatus(msg.Body())
	return
}

// Decodes the ack body
func (msg Message) Ack() (ack AckPayload, err error) {
	if msg.Type != TypeAck {
		err = fmt.Errorf("%w: want ack, got %s", ErrWrongType, msg.Type)
		return
	}
	if msg.Length < uint8(AckSize) {
		err = fmt.Errorf("%w: ack body has %d bytes", ErrShortFrame, msg.Length)
		return
	}
	ack.AcknowledgedSequenceID = msg.Payload[0]
	return
}

// Little endian to match the packed layout used by the field devices
var byteOrder = binary.LittleEndian
