package facebook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifySignature checks an X-Hub-Signature-256 header against the raw
// request body. The header carries a "sha256=" prefix followed by the hex
// HMAC of the body under the app secret. Comparison is constant-time.
func VerifySignature(appSecret string, body []byte, header string) bool {
	if appSecret == "" || header == "" {
		return false
	}

	sig := strings.TrimPrefix(header, "sha256=")
	provided, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}

// HashUserData normalizes and hashes one user identifier for event matching.
// The Conversions API expects lowercase, trimmed input hashed with SHA-256.
func HashUserData(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
