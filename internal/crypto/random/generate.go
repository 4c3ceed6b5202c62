// Cryptographically secure random values for link framing
package random

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Random tag identifying one transport instance on a shared carrier
func OriginTag() (tag uint32, err error) {
	var b [4]byte
	_, err = rand.Read(b[:])
	if err != nil {
		err = fmt.Errorf("failed to read random origin tag: %w", err)
		return
	}
	tag = binary.BigEndian.Uint32(b[:])
	return
}

// Fresh random nonce of the given size
func Nonce(size int) (nonce []byte, err error) {
	nonce = make([]byte, size)
	err = fillInsecure(nonce)
	return
}

// Refills slice from crypto/rand when it is empty, all zero or all identical bytes
func fillInsecure(slice []byte) (err error) {
	if len(slice) == 0 {
		return
	}
	if !isAllIdentical(slice) {
		return
	}
	_, err = rand.Read(slice)
	if err != nil {
		err = fmt.Errorf("failed to populate slice with random data: %w", err)
		return
	}
	return
}

// Also true for all zero
func isAllIdentical(slice []byte) bool {
	first := slice[0]
	for _, b := range slice[1:] {
		if b != first {
			return false
		}
	}
	return true
}
