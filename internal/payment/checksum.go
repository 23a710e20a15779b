package payment

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Checksum computes the gateway request signature:
// sha256(base64Payload + endpoint + merchantKey) hex-encoded, suffixed with
// "###" and the key index. For GET requests base64Payload is empty and the
// endpoint includes the full request path.
func Checksum(base64Payload, endpoint, merchantKey, keyIndex string) string {
	sum := sha256.Sum256([]byte(base64Payload + endpoint + merchantKey))
	return hex.EncodeToString(sum[:]) + "###" + keyIndex
}

// VerifyChecksum recomputes the signature and compares in constant time.
func VerifyChecksum(got, base64Payload, endpoint, merchantKey, keyIndex string) bool {
	want := Checksum(base64Payload, endpoint, merchantKey, keyIndex)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
