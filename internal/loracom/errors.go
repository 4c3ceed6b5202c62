package loracom

import (
	"errors"
	"loracom/pkg/protocol"
)

var (
	ErrPayloadTooLarge = protocol.ErrPayloadTooLarge
	ErrQueueFull       = errors.New("send queue is full")
	ErrTxTimeout       = errors.New("timed out waiting for the radio to finish transmitting")
	ErrNotStarted      = errors.New("engine has not been started")
	ErrNoMessage       = errors.New("nil message")
)
