package restutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SignatureHeader is the HTTP header name carrying the HMAC signature.
const SignatureHeader = "X-Orderbot-Signature-256"

// Sign produces an HMAC-SHA256 signature in the format "sha256=<hex>".
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}
