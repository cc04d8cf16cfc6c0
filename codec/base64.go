package codec

import (
	"encoding/base64"
	"strings"
)

// Btoa returns the standard base64 encoding of s.
func Btoa(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// Atob decodes s, accepting standard or URL-safe base64 with or without padding.
// Characters outside the alphabet are ignored.
func Atob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+', r == '/':
			b.WriteRune(r)
		case r == '-':
			b.WriteByte('+')
		case r == '_':
			b.WriteByte('/')
		case r == '=':
			// Padding ends the payload.
			return decodeRaw(b.String())
		}
	}
	return decodeRaw(b.String())
}

// EncodeString returns the URL-safe variant of Btoa: '+' becomes '-' and '/' becomes
// '_'. Padding is kept.
func EncodeString(s string) string {
	return strings.NewReplacer("+", "-", "/", "_").Replace(Btoa(s))
}

// DecodeString reverses EncodeString. It is the same decoder as Atob.
func DecodeString(s string) string {
	return Atob(s)
}

func decodeRaw(s string) string {
	// A single trailing sextet cannot encode a byte.
	if len(s)%4 == 1 {
		s = s[:len(s)-1]
	}
	out, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return ""
	}
	return string(out)
}
