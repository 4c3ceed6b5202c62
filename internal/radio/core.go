package radio

import (
	"fmt"
	"sync"
)

// Frames held for ReadData before the oldest is dropped
const rxDepth int = 8

// Mode and receive buffering shared by every transport
type halfDuplex struct {
	Settings

	mutex        sync.Mutex
	transmitting bool
	receiving    bool
	closed       bool
	inbox        [][]byte
	lastRSSI     int
	dropped      uint64 // frames lost to a full inbox or arriving outside receive mode

	notify *notifier
}

func (radio *halfDuplex) initCore(family Family) (err error) {
	err = radio.Settings.reset(family)
	if err != nil {
		return
	}
	radio.inbox = make([][]byte, 0, rxDepth)
	radio.notify = newNotifier()
	return
}

// Enters transmit mode. Returns the previous receive mode for rollback.
func (radio *halfDuplex) beginTx(frame []byte) (wasReceiving bool, err error) {
	if len(frame) == 0 || len(frame) > MaxFrameSize {
		err = fmt.Errorf("%w: %d bytes", ErrFrameSize, len(frame))
		return
	}

	radio.mutex.Lock()
	defer radio.mutex.Unlock()

	if radio.closed {
		err = ErrClosed
		return
	}
	if radio.transmitting {
		err = ErrBusy
		return
	}
	wasReceiving = radio.receiving
	radio.transmitting = true
	radio.receiving = false
	return
}

func (radio *halfDuplex) abortTx(wasReceiving bool) {
	radio.mutex.Lock()
	radio.transmitting = false
	radio.receiving = wasReceiving
	radio.mutex.Unlock()
}

func (radio *halfDuplex) FinishTransmit() (err error) {
	radio.mutex.Lock()
	defer radio.mutex.Unlock()
	if radio.closed {
		err = ErrClosed
		return
	}
	radio.transmitting = false
	return
}

func (radio *halfDuplex) StartReceive() (err error) {
	radio.mutex.Lock()
	if radio.closed {
		radio.mutex.Unlock()
		err = ErrClosed
		return
	}
	if radio.transmitting {
		radio.mutex.Unlock()
		err = ErrBusy
		return
	}
	radio.receiving = true
	waiting := len(radio.inbox) > 0
	radio.mutex.Unlock()

	if waiting {
		radio.notify.rxDone()
	}
	return
}

// Accepts a frame off the air. Frames outside receive mode are lost.
func (radio *halfDuplex) deliver(frame []byte, rssi int) (accepted bool) {
	radio.mutex.Lock()
	if radio.closed || radio.transmitting || !radio.receiving {
		radio.dropped++
		radio.mutex.Unlock()
		return
	}

	if len(radio.inbox) >= rxDepth {
		radio.inbox = radio.inbox[1:]
		radio.dropped++
	}
	stored := make([]byte, len(frame))
	copy(stored, frame)
	radio.inbox = append(radio.inbox, stored)
	radio.lastRSSI = rssi
	radio.mutex.Unlock()

	radio.notify.rxDone()
	accepted = true
	return
}

func (radio *halfDuplex) ReadData(buf []byte) (n int, err error) {
	radio.mutex.Lock()
	if radio.closed {
		radio.mutex.Unlock()
		err = ErrClosed
		return
	}
	if len(radio.inbox) == 0 {
		radio.mutex.Unlock()
		return
	}

	frame := radio.inbox[0]
	radio.inbox = radio.inbox[1:]
	more := len(radio.inbox) > 0 && radio.receiving && !radio.transmitting
	radio.mutex.Unlock()

	n = copy(buf, frame)
	if n < len(frame) {
		err = fmt.Errorf("%w: read buffer %d bytes, frame %d bytes", ErrFrameSize, len(buf), len(frame))
	}
	if more {
		radio.notify.rxDone()
	}
	return
}

func (radio *halfDuplex) RSSI() (rssi int) {
	radio.mutex.Lock()
	rssi = radio.lastRSSI
	radio.mutex.Unlock()
	return
}

func (radio *halfDuplex) OnComplete(handler func(Completion)) {
	radio.notify.setHandler(handler)
}

// Frames lost since creation
func (radio *halfDuplex) Dropped() (count uint64) {
	radio.mutex.Lock()
	count = radio.dropped
	radio.mutex.Unlock()
	return
}

func (radio *halfDuplex) isTransmitting() (transmitting bool) {
	radio.mutex.Lock()
	transmitting = radio.transmitting
	radio.mutex.Unlock()
	return
}

// Marks closed and stops notifications. Reports whether this call closed it.
func (radio *halfDuplex) closeCore() (first bool) {
	radio.mutex.Lock()
	first = !radio.closed
	radio.closed = true
	radio.inbox = nil
	radio.mutex.Unlock()

	if first {
		radio.notify.close()
	}
	return
}
