package radio

import (
	"context"
	"errors"
	"fmt"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"sync"
)

// Byte carrier beneath a link (UDP socket, serial bridge, sealing wrapper)
type carrier interface {
	send(frame []byte) error
	// Blocks for the next frame. rssi is the carrier's own reading or the link default.
	receive(buf []byte) (n int, rssi int, err error)
	close() error
	String() string
}

// Errors a carrier returns for one bad frame without the carrier itself failing
var errBadFrame = errors.New("bad frame on carrier")

// Read buffer sized for the largest carrier frame (sealed radio frame with framing)
const carrierBufSize int = 1024

// Half-duplex radio on top of a byte carrier
type link struct {
	halfDuplex

	ctx     context.Context
	carrier carrier
	wg      sync.WaitGroup
}

func newLink(ctx context.Context, family Family, car carrier) (radio *link, err error) {
	radio = &link{
		ctx:     logctx.AppendCtxTag(ctx, global.NSRadio),
		carrier: car,
	}
	err = radio.initCore(family)
	if err != nil {
		radio = nil
		return
	}

	radio.wg.Add(1)
	go radio.readLoop()
	return
}

func (radio *link) StartTransmit(frame []byte) (err error) {
	wasReceiving, err := radio.beginTx(frame)
	if err != nil {
		return
	}

	err = radio.carrier.send(frame)
	if err != nil {
		radio.abortTx(wasReceiving)
		err = fmt.Errorf("failed to transmit on %s: %w", radio.carrier, err)
		return
	}

	logctx.LogEvent(radio.ctx, global.VerbosityFullData, global.InfoLog,
		"Transmitted %d byte frame on %s\n", len(frame), radio.carrier)
	radio.notify.txDone()
	return
}

func (radio *link) readLoop() {
	defer radio.wg.Done()

	buf := make([]byte, carrierBufSize)
	for {
		n, rssi, err := radio.carrier.receive(buf)
		if err != nil {
			if errors.Is(err, errBadFrame) {
				logctx.LogEvent(radio.ctx, global.VerbosityProgress, global.WarnLog,
					"Discarded frame from %s: %v\n", radio.carrier, err)
				continue
			}

			radio.mutex.Lock()
			closed := radio.closed
			radio.mutex.Unlock()
			if !closed {
				logctx.LogEvent(radio.ctx, global.VerbosityStandard, global.ErrorLog,
					"Receive on %s stopped: %v\n", radio.carrier, err)
			}
			return
		}
		if n == 0 {
			continue
		}

		if !radio.deliver(buf[:n], rssi) {
			logctx.LogEvent(radio.ctx, global.VerbosityData, global.InfoLog,
				"Dropped %d byte frame received outside receive mode\n", n)
		}
	}
}

func (radio *link) Close() (err error) {
	if !radio.closeCore() {
		return
	}
	err = radio.carrier.close()
	radio.wg.Wait()
	return
}
