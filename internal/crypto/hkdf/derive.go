package hkdf

import (
	"crypto/sha512"
	"fmt"
	"loracom/internal/crypto"

	"golang.org/x/crypto/hkdf"
)

// Derives a link key of keySize bytes from a shared passphrase.
// namespace separates keys for different uses of the same secret.
// Secret is zeroed once the key is read.
func DeriveKey(secret, salt []byte, namespace string, keySize int) (key []byte, err error) {
	if len(secret) == 0 {
		err = fmt.Errorf("empty secret")
		return
	}
	if keySize <= 0 {
		err = fmt.Errorf("invalid key size %d", keySize)
		return
	}

	deriver := hkdf.New(sha512.New, secret, salt, []byte(namespace))
	key = make([]byte, keySize)
	_, err = deriver.Read(key)
	crypto.Memzero(secret)
	if err != nil {
		err = fmt.Errorf("failed to read derived key: %w", err)
		key = nil
		return
	}
	return
}
