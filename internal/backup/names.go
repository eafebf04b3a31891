package backup

import (
	"bytes"
	"strings"
)

// SafeName replaces every rune outside [A-Za-z0-9._-] so the result is a
// valid file name on every platform the archive may be unpacked on.
func SafeName(s string) string {
	if s == "" {
		return "unnamed"
	}
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// sniffExt guesses a file extension from magic bytes; unknown content gets
// a neutral ".bin".
func sniffExt(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return ".pdf"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return ".jpg"
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}):
		return ".png"
	default:
		return ".bin"
	}
}
