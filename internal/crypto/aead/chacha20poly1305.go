// Authenticated sealing of radio frames with chacha20poly1305
package aead

import (
	"crypto/cipher"
	"fmt"
	"loracom/internal/crypto"
	"loracom/internal/crypto/random"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeySize   int = chacha20poly1305.KeySize
	NonceSize int = chacha20poly1305.NonceSize
	Overhead  int = NonceSize + chacha20poly1305.Overhead // added to every sealed frame
)

type Sealer struct {
	aead cipher.AEAD
}

// Creates a sealer from a KeySize byte key. Key is zeroed after use.
func New(key []byte) (sealer *Sealer, err error) {
	aead, err := chacha20poly1305.New(key)
	crypto.Memzero(key)
	if err != nil {
		err = fmt.Errorf("failed creation of AEAD: %w", err)
		return
	}
	sealer = &Sealer{aead: aead}
	return
}

// Returns nonce || ciphertext || tag
func (sealer *Sealer) Seal(plaintext, additional []byte) (sealed []byte, err error) {
	nonce, err := random.Nonce(NonceSize)
	if err != nil {
		err = fmt.Errorf("failed to create nonce: %w", err)
		return
	}

	sealed = make([]byte, 0, len(plaintext)+Overhead)
	sealed = append(sealed, nonce...)
	sealed = sealer.aead.Seal(sealed, nonce, plaintext, additional)
	return
}

// Reverses Seal. Fails on tampering, wrong key or wrong additional data.
func (sealer *Sealer) Open(sealed, additional []byte) (plaintext []byte, err error) {
	if len(sealed) < Overhead {
		err = fmt.Errorf("sealed frame too short: %d bytes", len(sealed))
		return
	}

	nonce := sealed[:NonceSize]
	plaintext, err = sealer.aead.Open(nil, nonce, sealed[NonceSize:], additional)
	if err != nil {
		err = fmt.Errorf("failed decryption of sealed frame: %w", err)
		return
	}
	return
}
