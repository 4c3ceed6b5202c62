package radio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"go.bug.st/serial"
)

var bridgeMagic = []byte("PKT")

const bridgeHeaderSize int = 3 + 2 // magic + little-endian length

// Bridge port as seen by the codec. serial.Port satisfies it.
type bridgePort interface {
	io.ReadWriter
	ResetInputBuffer() error
}

// Carrier speaking to a radio bridge board over a serial line.
// Outbound: PKT, u16 length, frame. Inbound adds a trailing int8 RSSI.
type serialCarrier struct {
	port serial.Port
	name string
}

func (car *serialCarrier) send(frame []byte) (err error) {
	err = writeBridgeFrame(car.port, frame)
	return
}

func (car *serialCarrier) receive(buf []byte) (n int, rssi int, err error) {
	n, rssi, err = readBridgeFrame(car.port, buf)
	return
}

func (car *serialCarrier) close() (err error) {
	err = car.port.Close()
	return
}

func (car *serialCarrier) String() string {
	return "serial bridge " + car.name
}

func writeBridgeFrame(port io.Writer, frame []byte) (err error) {
	if len(frame) > 0xFFFF {
		err = fmt.Errorf("%w: %d bytes", ErrFrameSize, len(frame))
		return
	}
	packet := make([]byte, bridgeHeaderSize, bridgeHeaderSize+len(frame))
	copy(packet, bridgeMagic)
	binary.LittleEndian.PutUint16(packet[len(bridgeMagic):], uint16(len(frame)))
	packet = append(packet, frame...)

	_, err = port.Write(packet)
	return
}

// Reads one inbound frame, discarding buffered input until a header lines up
func readBridgeFrame(port bridgePort, buf []byte) (n int, rssi int, err error) {
	header := make([]byte, bridgeHeaderSize)
	_, err = io.ReadFull(port, header)
	if err != nil {
		return
	}

	for !bytes.HasPrefix(header, bridgeMagic) {
		err = port.ResetInputBuffer()
		if err != nil {
			return
		}
		_, err = io.ReadFull(port, header)
		if err != nil {
			return
		}
	}

	length := int(binary.LittleEndian.Uint16(header[len(bridgeMagic):]))
	body := make([]byte, length+1)
	_, err = io.ReadFull(port, body)
	if err != nil {
		return
	}

	if length > len(buf) {
		err = fmt.Errorf("%w: %d byte frame from bridge", errBadFrame, length)
		return
	}
	n = copy(buf, body[:length])
	rssi = int(int8(body[length]))
	return
}
