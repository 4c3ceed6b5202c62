package radio

import (
	"context"
	"fmt"
	"loracom/internal/crypto/random"
	"loracom/internal/network"

	"go.bug.st/serial"
)

const (
	TransportSim    string = "sim"
	TransportUDP    string = "udp"
	TransportSerial string = "serial"
)

type Config struct {
	Transport  string
	Family     Family
	SerialPort string
	SerialBaud int
	AirAddress string
	LinkKey    string // optional passphrase, seals frames on udp and serial
	RSSI       int    // reported for frames on carriers without signal readings
	Medium     *Medium
}

// Opens the configured transport
func Open(ctx context.Context, cfg Config) (radio Transceiver, err error) {
	family := cfg.Family
	if family == "" {
		family = SX127X
	}

	switch cfg.Transport {
	case TransportSim, "":
		medium := cfg.Medium
		if medium == nil {
			medium = NewMedium()
		}
		var sim *Sim
		sim, err = medium.Attach("local", family, cfg.RSSI, true)
		if err != nil {
			return
		}
		radio = sim
	case TransportUDP:
		var car carrier
		car, err = openUDPCarrier(ctx, cfg.AirAddress, cfg.RSSI)
		if err != nil {
			return
		}
		radio, err = openLink(ctx, family, car, cfg.LinkKey)
	case TransportSerial:
		if cfg.SerialPort == "" {
			err = fmt.Errorf("serial transport requires a port")
			return
		}
		var port serial.Port
		port, err = serial.Open(cfg.SerialPort, &serial.Mode{
			BaudRate: cfg.SerialBaud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err != nil {
			err = fmt.Errorf("failed to open radio bridge on %s: %w", cfg.SerialPort, err)
			return
		}
		radio, err = openLink(ctx, family, &serialCarrier{port: port, name: cfg.SerialPort}, cfg.LinkKey)
	default:
		err = fmt.Errorf("unknown radio transport %q", cfg.Transport)
	}
	return
}

func openUDPCarrier(ctx context.Context, address string, rssi int) (car *udpCarrier, err error) {
	air, err := network.ResolveAir(address)
	if err != nil {
		return
	}
	origin, err := random.OriginTag()
	if err != nil {
		return
	}
	conn, err := network.ListenAir(ctx, air)
	if err != nil {
		return
	}
	car = &udpCarrier{conn: conn, air: air, origin: origin, rssi: rssi}
	return
}

// Wraps the carrier in frame sealing when a link key is set, then starts the link
func openLink(ctx context.Context, family Family, car carrier, linkKey string) (radio Transceiver, err error) {
	if linkKey != "" {
		var sealed *sealedCarrier
		sealed, err = sealCarrier(car, linkKey)
		if err != nil {
			car.close()
			return
		}
		car = sealed
	}

	radioLink, err := newLink(ctx, family, car)
	if err != nil {
		car.close()
		return
	}
	radio = radioLink
	return
}
