package protocol

const (
	MaxPayloadSize int   = 240
	HeaderSize     int   = 5 // sender, receiver, sequence, type, length
	FrameSize      int   = HeaderSize + MaxPayloadSize
	BroadcastID    uint8 = 0xFF

	// Message kinds (wire values)
	TypeStatus  MessageType = 0
	TypeCommand MessageType = 1
	TypeAck     MessageType = 2

	// Command parameter kinds (wire values)
	ParamFloat  ParamType = 0
	ParamString ParamType = 1

	// Device status codes carried in status payloads
	StatusOK           StatusCode = 0
	StatusError        StatusCode = 1
	StatusBusy         StatusCode = 2
	StatusNoConnection StatusCode = 3

	// Command payload field lengths
	lenCommandID   int = 1
	lenParamType   int = 1
	lenParamRegion int = 128
	MaxCommandText int = lenParamRegion - 1 // room for terminator
	CommandSize    int = lenCommandID + lenParamType + lenParamRegion

	// Status payload field lengths
	StatusInputs int = 8
	StatusSize   int = 1 + 4 + 1 + 4*StatusInputs

	AckSize int = 1

	terminatorByte byte = 0x00
)
