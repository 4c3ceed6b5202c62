package install

import (
	"encoding/base64"
	"fmt"
	"loracom/internal/crypto"
	"loracom/internal/crypto/random"
	"loracom/internal/global"
)

// Random shared passphrase for radio.linkKey, to be copied to every node on the link
func GenerateLinkKey() (key string, err error) {
	raw, err := random.Nonce(global.DefaultLinkKeySize)
	if err != nil {
		err = fmt.Errorf("failed to generate link key: %w", err)
		return
	}
	defer crypto.Memzero(raw)

	key = base64.StdEncoding.EncodeToString(raw)
	return
}
