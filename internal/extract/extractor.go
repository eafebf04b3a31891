// Package extract turns raw document bytes into best-effort plain text plus
// a detected kind. Extraction never fails: every engine error degrades to
// empty text.
package extract

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mkessler/ablage/internal/models"
)

const (
	// Text-layer pass covers at most this many leading pages.
	textLayerPages = 3
	// Below this many trimmed characters the PDF is treated as scanned
	// and page 1 goes through OCR.
	ocrFallbackThreshold = 50
	// Rasterization scale for the OCR pass.
	ocrRasterScale = 2.0
	// Marker separating OCR output from text-layer output.
	ocrMarker = "[OCR]"
)

// Extractor dispatches extraction by detected kind.
type Extractor struct {
	engines Engines
	logger  *slog.Logger
}

// New creates an Extractor. Nil engines are allowed and degrade to empty
// text for their kind.
func New(engines Engines, logger *slog.Logger) *Extractor {
	return &Extractor{engines: engines, logger: logger}
}

// Extract returns best-effort plain text and the detected kind for the
// given bytes. It never returns an error.
func (e *Extractor) Extract(data []byte, declaredName string) (string, models.DocKind) {
	kind := DetectKind(data, declaredName, "")
	switch kind {
	case models.KindPDF:
		return e.pdfText(data), kind
	case models.KindImage:
		return e.imageText(data), kind
	case models.KindWord:
		return e.engineText(e.wordText, data, "word"), kind
	case models.KindExcel:
		return e.engineText(e.excelText, data, "excel"), kind
	case models.KindNote:
		return decodeText(data), kind
	default:
		return "", kind
	}
}

// pdfText extracts the text layer of the first pages and falls back to OCR
// of a rasterized page 1 when the layer is too short to be a real text PDF.
func (e *Extractor) pdfText(data []byte) string {
	if e.engines.PDF == nil {
		return ""
	}
	pages, err := e.engines.PDF.PageCount(data)
	if err != nil {
		e.warn("pdf page count failed", err)
		return ""
	}
	if pages > textLayerPages {
		pages = textLayerPages
	}

	var sb strings.Builder
	for p := 0; p < pages; p++ {
		text, err := e.engines.PDF.PageText(data, p)
		if err != nil {
			e.warn("pdf page text failed", err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	text := sb.String()

	// The threshold counts characters, not bytes; umlauts must not inflate
	// the measured length.
	if utf8.RuneCountInString(strings.TrimSpace(text)) >= ocrFallbackThreshold {
		return text
	}

	// Scanned PDF: rasterize page 1 and OCR it.
	if e.engines.OCR == nil {
		return text
	}
	img, err := e.engines.PDF.RasterizePage(data, 0, ocrRasterScale)
	if err != nil {
		e.warn("pdf rasterize failed", err)
		return text
	}
	ocr, err := e.engines.OCR.Recognize(img)
	if err != nil {
		e.warn("ocr failed", err)
		return text
	}
	return text + "\n" + ocrMarker + "\n" + ocr
}

func (e *Extractor) imageText(data []byte) string {
	if e.engines.OCR == nil {
		return ""
	}
	text, err := e.engines.OCR.Recognize(data)
	if err != nil {
		e.warn("ocr failed", err)
		return ""
	}
	return text
}

func (e *Extractor) wordText(data []byte) (string, error) {
	if e.engines.Word == nil {
		return "", nil
	}
	return e.engines.Word.Text(data)
}

func (e *Extractor) excelText(data []byte) (string, error) {
	if e.engines.Excel == nil {
		return "", nil
	}
	return e.engines.Excel.Text(data)
}

func (e *Extractor) engineText(fn func([]byte) (string, error), data []byte, kind string) string {
	text, err := fn(data)
	if err != nil {
		e.warn(kind+" extraction failed", err)
		return ""
	}
	return text
}

func (e *Extractor) warn(msg string, err error) {
	if e.logger != nil {
		e.logger.Warn("extract: "+msg, slog.String("error", err.Error()))
	}
}
