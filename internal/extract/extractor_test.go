package extract

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mkessler/ablage/internal/models"
)

type stubPDF struct {
	pages    []string
	raster   []byte
	countErr error
	textErr  error
}

func (s *stubPDF) PageCount(_ []byte) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return len(s.pages), nil
}

func (s *stubPDF) PageText(_ []byte, page int) (string, error) {
	if s.textErr != nil {
		return "", s.textErr
	}
	return s.pages[page], nil
}

func (s *stubPDF) RasterizePage(_ []byte, page int, scale float64) ([]byte, error) {
	if page != 0 {
		return nil, errors.New("only page 1 may be rasterized")
	}
	if scale != 2.0 {
		return nil, errors.New("unexpected raster scale")
	}
	return s.raster, nil
}

type stubOCR struct {
	text string
	err  error
}

func (s *stubOCR) Recognize(_ []byte) (string, error) {
	return s.text, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDetectKind(t *testing.T) {
	cases := []struct {
		name     string
		data     []byte
		filename string
		want     models.DocKind
	}{
		{"pdf signature", []byte("%PDF-1.7 ..."), "scan.bin", models.KindPDF},
		{"pdf extension override beats signature", []byte{0x89, 'P', 'N', 'G', 0}, "export.pdf", models.KindPDF},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "photo", models.KindImage},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D}, "shot", models.KindImage},
		{"docx zip", append([]byte("PK\x03\x04"), make([]byte, 8)...), "letter.docx", models.KindWord},
		{"xlsx zip", append([]byte("PK\x03\x04"), make([]byte, 8)...), "sheet.xlsx", models.KindExcel},
		{"legacy word", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1}, "old.doc", models.KindWord},
		{"legacy excel", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1}, "old.xls", models.KindExcel},
		{"text by extension", []byte("hello"), "notes.txt", models.KindNote},
		{"image by extension", []byte("who knows"), "pic.jpeg", models.KindImage},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, "blob", models.KindOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectKind(tc.data, tc.filename, ""); got != tc.want {
				t.Errorf("DetectKind = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDetectKindDeclaredMIME(t *testing.T) {
	// No usable signature or extension: the declared content type decides.
	cases := []struct {
		name string
		mime string
		want models.DocKind
	}{
		{"pdf", "application/pdf", models.KindPDF},
		{"image", "image/jpeg", models.KindImage},
		{"word", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", models.KindWord},
		{"legacy word", "application/msword", models.KindWord},
		{"excel", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", models.KindExcel},
		{"text", "text/plain", models.KindNote},
		{"unknown", "application/x-mystery", models.KindOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectKind([]byte{0x00, 0x01, 0x02, 0x03}, "attachment", tc.mime); got != tc.want {
				t.Errorf("DetectKind = %v, want %v", got, tc.want)
			}
		})
	}

	// A matching signature outranks a disagreeing declared type.
	if got := DetectKind([]byte{0xFF, 0xD8, 0xFF, 0xE0}, "attachment", "application/pdf"); got != models.KindImage {
		t.Errorf("DetectKind = %v, want signature to outrank declared MIME", got)
	}
}

func TestPDFTextLayerSufficient(t *testing.T) {
	// Exactly 50 trimmed characters: no OCR pass.
	layer := strings.Repeat("a", 50)
	ocr := &stubOCR{text: "SHOULD NOT APPEAR"}
	e := New(Engines{PDF: &stubPDF{pages: []string{layer}}, OCR: ocr}, testLogger())

	text, kind := e.Extract([]byte("%PDF"), "doc.pdf")
	if kind != models.KindPDF {
		t.Fatalf("kind = %v", kind)
	}
	if strings.Contains(text, "SHOULD NOT APPEAR") || strings.Contains(text, ocrMarker) {
		t.Errorf("OCR ran despite sufficient text layer: %q", text)
	}
}

func TestPDFThresholdCountsCharactersNotBytes(t *testing.T) {
	cases := []struct {
		name    string
		layer   string
		wantOCR bool
	}{
		// 30 characters but 60 bytes: still a scanned PDF.
		{"30 umlauts", strings.Repeat("ü", 30), true},
		{"49 umlauts", strings.Repeat("ä", 49), true},
		{"50 umlauts", strings.Repeat("ö", 50), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New(Engines{
				PDF: &stubPDF{pages: []string{tc.layer}, raster: []byte("png")},
				OCR: &stubOCR{text: "Beleg 2023"},
			}, testLogger())

			text, _ := e.Extract([]byte("%PDF"), "doc.pdf")
			if got := strings.Contains(text, ocrMarker); got != tc.wantOCR {
				t.Errorf("OCR ran = %v, want %v for %d-character layer",
					got, tc.wantOCR, len([]rune(tc.layer)))
			}
		})
	}
}

func TestPDFOCRFallbackBelowThreshold(t *testing.T) {
	// 49 trimmed characters: the scanned-PDF fallback must run.
	layer := strings.Repeat("a", 49)
	e := New(Engines{
		PDF: &stubPDF{pages: []string{layer}, raster: []byte("png")},
		OCR: &stubOCR{text: "Rechnung 2023"},
	}, testLogger())

	text, _ := e.Extract([]byte("%PDF"), "doc.pdf")
	if !strings.Contains(text, ocrMarker) {
		t.Fatalf("expected OCR marker in %q", text)
	}
	if !strings.Contains(text, "Rechnung 2023") {
		t.Errorf("expected OCR text appended, got %q", text)
	}
	if !strings.Contains(text, layer) {
		t.Errorf("text layer must be kept, got %q", text)
	}
}

func TestPDFTextPassCoversFirstThreePages(t *testing.T) {
	pdf := &stubPDF{pages: []string{"one", "two", "three", "FOUR"}}
	e := New(Engines{PDF: pdf, OCR: &stubOCR{text: "ocr"}}, testLogger())

	text, _ := e.Extract([]byte("%PDF"), "doc.pdf")
	if strings.Contains(text, "FOUR") {
		t.Errorf("page 4 must not be read: %q", text)
	}
	for _, want := range []string{"one", "two", "three"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing page text %q in %q", want, text)
		}
	}
}

func TestExtractNeverFails(t *testing.T) {
	boom := errors.New("engine exploded")
	cases := []struct {
		name string
		e    *Extractor
		file string
	}{
		{"pdf count error", New(Engines{PDF: &stubPDF{countErr: boom}}, testLogger()), "x.pdf"},
		{"pdf text error", New(Engines{PDF: &stubPDF{pages: []string{""}, textErr: boom}}, testLogger()), "x.pdf"},
		{"ocr error", New(Engines{OCR: &stubOCR{err: boom}}, testLogger()), "x.png"},
		{"nil engines pdf", New(Engines{}, testLogger()), "x.pdf"},
		{"nil engines image", New(Engines{}, testLogger()), "x.jpg"},
		{"nil engines word", New(Engines{}, testLogger()), "x.docx"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, kind := tc.e.Extract([]byte{0x00}, tc.file)
			if kind == "" {
				t.Error("kind must always be defined")
			}
			_ = text // empty text is the contract, not a failure
		})
	}
}

func TestDecodeTextWindows1252(t *testing.T) {
	// "Gebühr" in Windows-1252: 0xFC for ü, invalid as UTF-8.
	raw := []byte{'G', 'e', 'b', 0xFC, 'h', 'r', ' ', 'f', 0xFC, 'r', ' ', '2', '0', '2', '4'}
	e := New(Engines{}, testLogger())
	text, kind := e.Extract(raw, "notiz.txt")
	if kind != models.KindNote {
		t.Fatalf("kind = %v", kind)
	}
	if !strings.Contains(text, "Gebühr") {
		t.Errorf("decoded text = %q", text)
	}
}

func TestDecodeTextUTF8BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Miete 2024")...)
	e := New(Engines{}, testLogger())
	text, _ := e.Extract(raw, "notiz.txt")
	if text != "Miete 2024" {
		t.Errorf("text = %q, want BOM stripped", text)
	}
}
