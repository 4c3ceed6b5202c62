package protocol

import "errors"

var (
	ErrPayloadTooLarge = errors.New("payload exceeds maximum frame payload size")
	ErrShortFrame      = errors.New("frame shorter than its header or declared length")
	ErrUnknownType     = errors.New("unknown message type")
	ErrWrongType       = errors.New("message is not of the requested type")
	ErrEmptyCommand    = errors.New("empty command")
	ErrNoParameter     = errors.New("command has no parameter")
	ErrBadCommandID    = errors.New("command ID is not a number between 0 and 255")
)
