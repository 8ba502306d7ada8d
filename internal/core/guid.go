package core

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	guidAlphabet        = "0123456789abcdefghijklmnopqrstuvwxyz"
	guidLength          = 8
	displayLengthSmall  = 4
	displayLengthMedium = 5
	displayLengthLarge  = 6
)

// ID prefixes for stored entities.
const (
	PrefixUser         = "usr"
	PrefixMessage      = "msg"
	PrefixNotification = "ntf"
	PrefixHistory      = "hst"
)

// GenerateGUID creates a short GUID with the provided prefix.
func GenerateGUID(prefix string) (string, error) {
	normalized := strings.TrimSuffix(prefix, "-")

	buf := make([]byte, guidLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate guid: %w", err)
	}

	id := make([]byte, guidLength)
	for i := 0; i < guidLength; i++ {
		id[i] = guidAlphabet[int(buf[i])%len(guidAlphabet)]
	}

	return fmt.Sprintf("%s-%s", normalized, string(id)), nil
}

// GetDisplayPrefixLength returns the short GUID length for display.
func GetDisplayPrefixLength(count int) int {
	if count < 500 {
		return displayLengthSmall
	}
	if count < 1500 {
		return displayLengthMedium
	}
	return displayLengthLarge
}

// IsGUIDPrefix reports whether s is a non-empty run of GUID characters.
func IsGUIDPrefix(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(guidAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

// GetGUIDPrefix extracts the shortened ID prefix used in CLI output.
func GetGUIDPrefix(guid string, length int) string {
	base := guid
	if idx := strings.IndexByte(base, '-'); idx >= 0 && idx <= 3 {
		base = base[idx+1:]
	}
	if length <= 0 {
		return ""
	}
	if length > len(base) {
		length = len(base)
	}
	return base[:length]
}
