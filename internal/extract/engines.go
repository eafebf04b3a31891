package extract

// The format-specific extraction engines are external capabilities; the
// extractor only ever talks to these interfaces. Any nil engine simply
// yields empty text for its kind.

// PDFEngine reads the text layer of a PDF and rasterizes single pages.
type PDFEngine interface {
	PageCount(data []byte) (int, error)
	// PageText returns the text layer of the given zero-based page.
	PageText(data []byte, page int) (string, error)
	// RasterizePage renders the given zero-based page as a PNG at the
	// given scale factor.
	RasterizePage(data []byte, page int, scale float64) ([]byte, error)
}

// OCREngine recognises text in a raster image.
type OCREngine interface {
	Recognize(image []byte) (string, error)
}

// WordEngine extracts plain text from Word documents.
type WordEngine interface {
	Text(data []byte) (string, error)
}

// ExcelEngine flattens spreadsheet cells into plain text.
type ExcelEngine interface {
	Text(data []byte) (string, error)
}

// Engines bundles the external capabilities an Extractor delegates to.
type Engines struct {
	PDF   PDFEngine
	OCR   OCREngine
	Word  WordEngine
	Excel ExcelEngine
}
