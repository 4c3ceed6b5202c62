package protocol

type MessageType uint8
type ParamType uint8
type StatusCode uint8

// Fixed size radio frame
type Message struct {
	SenderID   uint8
	ReceiverID uint8 // BroadcastID matches every device
	SequenceID uint8
	Type       MessageType
	Length     uint8 // Bytes of Payload holding the typed body
	Payload    [MaxPayloadSize]byte
}

// Command with either a float or a text parameter (selected by ParamType)
type CommandPayload struct {
	CommandID uint8
	ParamType ParamType
	Float     float32
	Text      string
}

// Telemetry snapshot
type StatusPayload struct {
	RSSI           int8
	BatteryVoltage float32
	Status         StatusCode
	Inputs         [StatusInputs]float32
}

type AckPayload struct {
	AcknowledgedSequenceID uint8
}
