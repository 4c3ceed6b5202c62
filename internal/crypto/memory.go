// Shared helpers for handling link key material
package crypto

import "runtime"

// Overwrites key material in place
func Memzero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}
