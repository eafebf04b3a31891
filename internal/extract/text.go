package extract

import (
	"bytes"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText converts plain-text document bytes to UTF-8.
//
// Detection order:
//  1. BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. Valid UTF-8 passes through unchanged
//  3. Heuristic detection via chardet
//  4. Fallback to Windows-1252
//
// Decoding failures fall back to the raw bytes as a string; extraction
// never fails.
func decodeText(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):])
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeWith(data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeWith(data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder())
	}

	if utf8.Valid(data) {
		return string(data)
	}

	detector := chardet.NewTextDetector()
	if result, err := detector.DetectBest(data); err == nil {
		switch result.Charset {
		case "UTF-8":
			return string(data)
		case "ISO-8859-1", "windows-1252":
			return decodeWith(data, charmap.Windows1252.NewDecoder())
		case "ISO-8859-9":
			return decodeWith(data, charmap.ISO8859_9.NewDecoder())
		}
	}

	return decodeWith(data, charmap.Windows1252.NewDecoder())
}

func decodeWith(data []byte, t transform.Transformer) string {
	out, _, err := transform.Bytes(t, data)
	if err != nil {
		return string(data)
	}
	return string(out)
}
