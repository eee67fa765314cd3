// Package export serialises document results to downloadable files: PDF,
// Word-compatible HTML, CSV and PNG.
//
// Render produces the bytes of a download; Exporter.Export also writes them
// into the output directory. Every failure is an *ExportError and leaves no
// file behind.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/ironsheep/doc-tools-mcp/internal/config"
)

// Format is an export format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatWord Format = "word"
	FormatCSV  Format = "csv"
	FormatPNG  Format = "png"
)

// MimeType returns the download media type of the format.
func (f Format) MimeType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatWord:
		return "application/msword"
	case FormatCSV:
		return "text/csv"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// Extension returns the file extension of the format, with the dot.
func (f Format) Extension() string {
	switch f {
	case FormatWord:
		return ".doc"
	case FormatPDF, FormatCSV, FormatPNG:
		return "." + string(f)
	}
	return ""
}

// DefaultTitle names downloads whose title is empty.
const DefaultTitle = "document"

// Document is the content handed to an exporter. PDF and Word use Text, CSV
// uses Table and PNG uses Image.
type Document struct {
	Title string
	Text  string
	Table *Table
	Image []byte
}

// Rendered is an in-memory download.
type Rendered struct {
	Filename string
	MimeType string
	Data     []byte
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Render serialises doc in the given format without touching the disk.
func Render(format Format, doc Document, opts PDFOptions) (*Rendered, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatPDF:
		data, err = PDF(doc.Title, doc.Text, opts)
	case FormatWord:
		data, err = Word(doc.Title, doc.Text)
	case FormatCSV:
		if doc.Table == nil {
			return nil, &ExportError{Format: format, Err: fmt.Errorf("%w: no table", ErrNoContent)}
		}
		data = CSV(*doc.Table)
	case FormatPNG:
		if !bytes.HasPrefix(doc.Image, pngSignature) {
			return nil, &ExportError{Format: format, Err: fmt.Errorf("%w: not a PNG image", ErrNoContent)}
		}
		data = doc.Image
	default:
		return nil, &ExportError{Format: format, Err: ErrUnknownFormat}
	}
	if err != nil {
		return nil, err
	}

	return &Rendered{
		Filename: Filename(doc.Title, format),
		MimeType: format.MimeType(),
		Data:     data,
	}, nil
}

// Filename builds "<title><ext>" from a sanitised title. Path separators
// and control characters are replaced so the name stays inside the output
// directory.
func Filename(title string, format Format) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, ". ")
	if name == "" {
		name = DefaultTitle
	}
	ext := format.Extension()
	if strings.HasSuffix(strings.ToLower(name), ext) {
		return name
	}
	return name + ext
}

// Download describes a file written by the exporter.
type Download struct {
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	Path      string `json:"path"`
	SizeBytes int    `json:"size_bytes"`
}

// Exporter renders documents and writes them into an output directory.
type Exporter struct {
	dir string
	pdf PDFOptions
	log *zap.Logger
}

// New creates an exporter from configuration. An empty output directory
// means the working directory.
func New(cfg config.ExportConfig, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	dir := cfg.OutputDir
	if dir == "" {
		dir = "."
	}
	return &Exporter{
		dir: dir,
		pdf: PDFOptions{FontFile: cfg.PDFFont, FontSize: cfg.PDFFontSize},
		log: log,
	}
}

// Render is the package Render with the exporter's PDF options.
func (e *Exporter) Render(format Format, doc Document) (*Rendered, error) {
	return Render(format, doc, e.pdf)
}

// Export renders doc and writes it to the output directory, replacing any
// file of the same name.
func (e *Exporter) Export(format Format, doc Document) (*Download, error) {
	r, err := e.Render(format, doc)
	if err != nil {
		e.log.Warn("export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, err
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, &ExportError{Format: format, Err: fmt.Errorf("failed to create output directory: %w", err)}
	}
	path := filepath.Join(e.dir, r.Filename)
	if err := writeFileAtomic(path, r.Data); err != nil {
		return nil, &ExportError{Format: format, Err: err}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	e.log.Info("document exported",
		zap.String("format", string(format)),
		zap.String("path", abs),
		zap.Int("bytes", len(r.Data)))

	return &Download{
		Filename:  r.Filename,
		MimeType:  r.MimeType,
		Path:      abs,
		SizeBytes: len(r.Data),
	}, nil
}

// writeFileAtomic writes to a temporary file in the same directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return os.Chmod(path, 0644)
}
