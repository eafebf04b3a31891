package extract

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/mkessler/ablage/internal/models"
)

var (
	sigPDF  = []byte("%PDF")
	sigZip  = []byte("PK\x03\x04")
	sigOLE  = []byte{0xD0, 0xCF, 0x11, 0xE0}
	sigJPEG = []byte{0xFF, 0xD8, 0xFF}
	sigPNG  = []byte{0x89, 'P', 'N', 'G'}
)

// DetectKind classifies raw bytes into a document kind.
//
// A ".pdf" extension always wins, even over a disagreeing signature: scan
// apps routinely emit files whose first bytes are garbage but that every
// downstream consumer treats as PDF. For everything else the signature is
// authoritative when it matches, then the declared MIME type, then the
// extension. The ingestion pipeline reads files from disk and has no MIME
// metadata to declare; the declaredMIME tier serves callers that receive
// documents with a content type attached (mail attachments, uploads).
func DetectKind(data []byte, name, declaredMIME string) models.DocKind {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".pdf" {
		return models.KindPDF
	}

	if len(data) >= 4 {
		head := data[:4]
		switch {
		case bytes.HasPrefix(head, sigPDF):
			return models.KindPDF
		case bytes.HasPrefix(head, sigJPEG), bytes.HasPrefix(head, sigPNG):
			return models.KindImage
		case bytes.HasPrefix(head, sigZip):
			// Office Open XML containers are zips; the extension decides.
			switch ext {
			case ".docx":
				return models.KindWord
			case ".xlsx":
				return models.KindExcel
			}
		case bytes.HasPrefix(head, sigOLE):
			switch ext {
			case ".doc":
				return models.KindWord
			case ".xls":
				return models.KindExcel
			}
		}
	}

	if kind, ok := kindFromMIME(declaredMIME); ok {
		return kind
	}
	return kindFromExt(ext)
}

func kindFromMIME(mime string) (models.DocKind, bool) {
	switch {
	case mime == "application/pdf":
		return models.KindPDF, true
	case strings.HasPrefix(mime, "image/"):
		return models.KindImage, true
	case strings.Contains(mime, "wordprocessingml"), mime == "application/msword":
		return models.KindWord, true
	case strings.Contains(mime, "spreadsheetml"), mime == "application/vnd.ms-excel":
		return models.KindExcel, true
	case strings.HasPrefix(mime, "text/"):
		return models.KindNote, true
	}
	return models.KindOther, false
}

func kindFromExt(ext string) models.DocKind {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".tiff", ".bmp", ".heic":
		return models.KindImage
	case ".doc", ".docx", ".odt", ".rtf":
		return models.KindWord
	case ".xls", ".xlsx", ".ods", ".csv":
		return models.KindExcel
	case ".txt", ".md", ".text":
		return models.KindNote
	default:
		return models.KindOther
	}
}
