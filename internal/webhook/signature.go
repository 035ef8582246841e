// Package webhook implements the thin HTTP ingress for WhatsApp bridge and
// payment-gateway webhooks: authenticate, parse, publish exactly one task
// message. No processing happens inline.
package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// verifySignature checks an HMAC-SHA512 signature over body against secret.
// An empty secret disables the check entirely (returns true).
func verifySignature(secret string, body []byte, signature string) bool {
	if secret == "" {
		return true
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
