package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// ContentHash derives the content fingerprint sent with attention
// reports: SHA256 of the interaction type and target id.
func ContentHash(interactionType, targetID string) string {
	return SHA256Hex(interactionType + ":" + targetID)
}

// ContextHash binds a report to its session: SHA256 of the session id
// and target id.
func ContextHash(sessionID, targetID string) string {
	return SHA256Hex(sessionID + ":" + targetID)
}

// SessionHashPrefix returns a short, irreversible prefix of a hashed
// session id for log correlation without writing the raw id to logs.
func SessionHashPrefix(sessionID string, prefixLen int) string {
	full := SHA256Hex(sessionID)
	if prefixLen > len(full) {
		return full
	}
	return full[:prefixLen]
}

// IteratedSHA256 applies SHA256 iteratively n times to produce a derived
// hash. Used for salted IP hashing.
func IteratedSHA256(input string, iterations int) string {
	data := []byte(input)
	for i := 0; i < iterations; i++ {
		h := sha256.Sum256(data)
		data = h[:]
	}
	return hex.EncodeToString(data)
}

// HashIP hashes an IP address with a salt using 5000 iterations of SHA256.
func HashIP(ip, salt string) string {
	return IteratedSHA256(salt+ip, 5000)
}
