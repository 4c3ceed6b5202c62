package radio

import (
	"fmt"
	"loracom/internal/crypto/aead"
	"loracom/internal/crypto/hkdf"
)

const (
	linkKeySalt      string = "loracom-link"
	linkKeyNamespace string = "frame-seal-v1"
)

// Authenticates and encrypts every frame on the wrapped carrier with a shared link key
type sealedCarrier struct {
	inner  carrier
	sealer *aead.Sealer
}

// Derives the frame sealing key from a shared passphrase
func newLinkSealer(passphrase string) (sealer *aead.Sealer, err error) {
	key, err := hkdf.DeriveKey([]byte(passphrase), []byte(linkKeySalt), linkKeyNamespace, aead.KeySize)
	if err != nil {
		err = fmt.Errorf("failed to derive link key: %w", err)
		return
	}
	sealer, err = aead.New(key)
	return
}

func sealCarrier(inner carrier, passphrase string) (sealed *sealedCarrier, err error) {
	sealer, err := newLinkSealer(passphrase)
	if err != nil {
		return
	}
	sealed = &sealedCarrier{inner: inner, sealer: sealer}
	return
}

func (car *sealedCarrier) send(frame []byte) (err error) {
	sealed, err := car.sealer.Seal(frame, airMagic)
	if err != nil {
		return
	}
	err = car.inner.send(sealed)
	return
}

func (car *sealedCarrier) receive(buf []byte) (n int, rssi int, err error) {
	sealed := make([]byte, carrierBufSize)
	read, rssi, err := car.inner.receive(sealed)
	if err != nil {
		return
	}

	frame, err := car.sealer.Open(sealed[:read], airMagic)
	if err != nil {
		err = fmt.Errorf("%w: %v", errBadFrame, err)
		return
	}
	n = copy(buf, frame)
	return
}

func (car *sealedCarrier) close() (err error) {
	err = car.inner.close()
	return
}

func (car *sealedCarrier) String() string {
	return "sealed " + car.inner.String()
}
