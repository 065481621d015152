package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateInviteCode generates a random invite code of three groups of four
// upper-case hex digits, e.g. 3F9A-0C12-B7E4.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	code := strings.ToUpper(hex.EncodeToString(buf))
	return code[0:4] + "-" + code[4:8] + "-" + code[8:12], nil
}
