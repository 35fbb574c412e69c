// Package trackcode generates and validates human-shareable tracking codes.
// Codes are distinct from parcel primary keys: short, upper-case, and free
// of look-alike characters so they survive being read over the phone.
package trackcode

import (
	"crypto/rand"
	"strings"
)

const (
	Prefix    = "MBA-"
	suffixLen = 10

	// no I, O, 0, 1
	charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

func New() (string, error) {
	buf := make([]byte, suffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(Prefix)
	for _, c := range buf {
		b.WriteByte(charset[int(c)%len(charset)])
	}
	return b.String(), nil
}

func Valid(code string) bool {
	if !strings.HasPrefix(code, Prefix) {
		return false
	}
	suffix := code[len(Prefix):]
	if len(suffix) != suffixLen {
		return false
	}
	for i := 0; i < len(suffix); i++ {
		if !strings.ContainsRune(charset, rune(suffix[i])) {
			return false
		}
	}
	return true
}
