package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	pdfMarginMM     = 10.0
	pdfContentWidth = 180.0 // A4 width minus both margins
	pdfCoreFont     = "Helvetica"
	pdfCustomFont   = "DocFont"
	ptToMM          = 25.4 / 72
)

// PDFOptions configures the PDF renderer. An empty FontFile uses the core
// Helvetica font, which only covers Windows-1252.
type PDFOptions struct {
	FontFile string
	FontSize float64
}

// renderPDF lays text out on A4 portrait pages starting at the top margin,
// wrapping to the content width and breaking pages at the bottom margin.
// The title is document metadata only.
func renderPDF(title, text string, opts PDFOptions) (*fpdf.Fpdf, error) {
	size := opts.FontSize
	if size <= 0 {
		size = 11
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginMM, pdfMarginMM, pdfMarginMM)
	pdf.SetAutoPageBreak(true, pdfMarginMM)
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.SetTitle(title, true)
	pdf.SetCreator("doc-tools-mcp", true)

	body := text
	if opts.FontFile != "" {
		pdf.AddUTF8Font(pdfCustomFont, "", opts.FontFile)
		pdf.SetFont(pdfCustomFont, "", size)
	} else {
		encoded, err := charmap.Windows1252.NewEncoder().String(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedText, err)
		}
		body = encoded
		pdf.SetFont(pdfCoreFont, "", size)
	}

	pdf.AddPage()
	pdf.SetXY(pdfMarginMM, pdfMarginMM)
	pdf.MultiCell(pdfContentWidth, size*ptToMM*1.15, body, "", "L", false)

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	return pdf, nil
}

// PDF renders text as an A4 PDF document.
func PDF(title, text string, opts PDFOptions) ([]byte, error) {
	pdf, err := renderPDF(title, text, opts)
	if err != nil {
		return nil, &ExportError{Format: FormatPDF, Err: err}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &ExportError{Format: FormatPDF, Err: err}
	}
	return buf.Bytes(), nil
}
