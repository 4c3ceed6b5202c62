package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestConstructFrame(t *testing.T) {
	tests := []struct {
		name        string
		msg         Message
		expectedErr bool
	}{
		{
			name: "ack frame",
			msg:  NewAckMessage(1, 2, 77),
		},
		{
			name: "empty status body",
			msg:  Message{SenderID: 3, ReceiverID: BroadcastID, Type: TypeStatus},
		},
		{
			name:        "unknown type",
			msg:         Message{Type: MessageType(9)},
			expectedErr: true,
		},
		{
			name:        "length over maximum",
			msg:         Message{Type: TypeStatus, Length: uint8(MaxPayloadSize + 1)},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := ConstructFrame(tt.msg)
			if tt.expectedErr {
				if err == nil {
					t.Fatalf("expected error, got frame of %d bytes", len(frame))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(frame) != FrameSize {
				t.Fatalf("expected fixed frame size %d, got %d", FrameSize, len(frame))
			}
			header := []byte{tt.msg.SenderID, tt.msg.ReceiverID, tt.msg.SequenceID, uint8(tt.msg.Type), tt.msg.Length}
			if !bytes.Equal(frame[:HeaderSize], header) {
				t.Errorf("expected header %v, got %v", header, frame[:HeaderSize])
			}

			decoded, err := DeconstructFrame(frame)
			if err != nil {
				t.Fatalf("failed to decode constructed frame: %v", err)
			}
			if decoded != tt.msg {
				t.Errorf("decoded message differs from original")
			}
		})
	}
}

func TestDeconstructFrame(t *testing.T) {
	tests := []struct {
		name        string
		frame       []byte
		expectedErr error
	}{
		{
			name:        "too short for header",
			frame:       []byte{1, 2, 3},
			expectedErr: ErrShortFrame,
		},
		{
			name:        "declared length beyond data",
			frame:       []byte{1, 2, 3, uint8(TypeAck), 4, 0},
			expectedErr: ErrShortFrame,
		},
		{
			name:        "invalid type",
			frame:       []byte{1, 2, 3, 7, 0},
			expectedErr: ErrUnknownType,
		},
		{
			name:        "declared length over maximum",
			frame:       append([]byte{1, 2, 3, uint8(TypeStatus), 250}, make([]byte, 250)...),
			expectedErr: ErrPayloadTooLarge,
		},
		{
			name:  "short frame holding whole body",
			frame: []byte{1, 2, 3, uint8(TypeAck), 1, 42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeconstructFrame(tt.frame)
			if tt.expectedErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestTypedMessages(t *testing.T) {
	t.Run("command float", func(t *testing.T) {
		msg, err := NewCommandMessage(1, 2, CommandPayload{CommandID: 4, ParamType: ParamFloat, Float: -9})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if int(msg.Length) != CommandSize {
			t.Fatalf("expected length %d, got %d", CommandSize, msg.Length)
		}
		cmd, err := msg.Command()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.CommandID != 4 || cmd.ParamType != ParamFloat || cmd.Float != -9 {
			t.Errorf("unexpected command %+v", cmd)
		}
	})

	t.Run("command text is null terminated", func(t *testing.T) {
		msg, err := NewCommandMessage(1, 2, CommandPayload{CommandID: 12, ParamType: ParamString, Text: "hello"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.Payload[2+len("hello")] != 0 {
			t.Errorf("expected terminator after text")
		}
		cmd, err := msg.Command()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Text != "hello" {
			t.Errorf("expected 'hello', got '%s'", cmd.Text)
		}
	})

	t.Run("status", func(t *testing.T) {
		in := StatusPayload{RSSI: -100, BatteryVoltage: 12.25, Status: StatusBusy}
		in.Inputs[7] = 1.5
		msg, err := NewStatusMessage(5, BroadcastID, in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if int(msg.Length) != StatusSize {
			t.Fatalf("expected length %d, got %d", StatusSize, msg.Length)
		}
		out, err := msg.Status()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != in {
			t.Errorf("expected %+v, got %+v", in, out)
		}
	})

	t.Run("wrong type accessor", func(t *testing.T) {
		msg := NewAckMessage(1, 2, 3)
		if _, err := msg.Command(); !errors.Is(err, ErrWrongType) {
			t.Errorf("expected ErrWrongType, got %v", err)
		}
		ack, err := msg.Ack()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ack.AcknowledgedSequenceID != 3 {
			t.Errorf("expected acknowledged 3, got %d", ack.AcknowledgedSequenceID)
		}
	})
}

func TestAddressedTo(t *testing.T) {
	tests := []struct {
		name     string
		receiver uint8
		device   uint8
		expected bool
	}{
		{"exact match", 4, 4, true},
		{"broadcast", BroadcastID, 4, true},
		{"other device", 5, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Message{ReceiverID: tt.receiver}
			if got := msg.AddressedTo(tt.device); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
