package radio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
)

var airMagic = []byte("LRC")

const airHeaderSize int = 3 + 4 // magic + origin tag

// Broadcast UDP carrier standing in for the shared radio channel
type udpCarrier struct {
	conn   *net.UDPConn
	air    *net.UDPAddr
	origin uint32
	rssi   int
}

func (car *udpCarrier) send(frame []byte) (err error) {
	_, err = car.conn.WriteToUDP(encodeAirPacket(car.origin, frame), car.air)
	return
}

func (car *udpCarrier) receive(buf []byte) (n int, rssi int, err error) {
	packet := make([]byte, carrierBufSize)
	for {
		var read int
		read, _, err = car.conn.ReadFromUDP(packet)
		if err != nil {
			return
		}

		origin, frame, ok := decodeAirPacket(packet[:read])
		if !ok || origin == car.origin {
			// Foreign traffic or our own broadcast echo
			continue
		}

		n = copy(buf, frame)
		rssi = car.rssi
		return
	}
}

func (car *udpCarrier) close() (err error) {
	err = car.conn.Close()
	return
}

func (car *udpCarrier) String() string {
	return fmt.Sprintf("udp air %s", car.air)
}

func encodeAirPacket(origin uint32, frame []byte) (packet []byte) {
	packet = make([]byte, airHeaderSize, airHeaderSize+len(frame))
	copy(packet, airMagic)
	binary.BigEndian.PutUint32(packet[len(airMagic):], origin)
	packet = append(packet, frame...)
	return
}

func decodeAirPacket(packet []byte) (origin uint32, frame []byte, ok bool) {
	if len(packet) <= airHeaderSize || !bytes.HasPrefix(packet, airMagic) {
		return
	}
	origin = binary.BigEndian.Uint32(packet[len(airMagic):airHeaderSize])
	frame = packet[airHeaderSize:]
	ok = true
	return
}
