package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"

	"github.com/ironsheep/doc-tools-mcp/internal/imaging"
)

// Tesseract runs OCR locally through the Tesseract engine. It ignores the
// instruction and always returns the recognised text, so it only serves
// plain-text tasks.
//
// Tesseract and the language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// TessdataPrefix overrides the directory the language data is read from.
type Tesseract struct {
	language       string
	tessdataPrefix string
	log            *zap.Logger
}

// NewTesseract creates a provider for the given Tesseract language code
// ("eng", "deu", "eng+fra", ...).
func NewTesseract(language, tessdataPrefix string, log *zap.Logger) *Tesseract {
	if language == "" {
		language = "eng"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Tesseract{language: language, tessdataPrefix: tessdataPrefix, log: log}
}

// Name implements Capability.
func (t *Tesseract) Name() string { return "tesseract" }

// Generate implements Capability.
func (t *Tesseract) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	switch {
	case req.WantImage:
		return nil, newError(t.Name(), ErrImageOutputUnsupported)
	case req.Schema != nil:
		return nil, newError(t.Name(), ErrStructuredOutputUnsupported)
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(t.Name(), err)
	}

	src, err := imaging.SourceFromBase64(req.ImageBase64, req.MimeType)
	if err != nil {
		return nil, err
	}

	text, err := t.recognize(src.Bytes())
	if err != nil {
		return nil, newError(t.Name(), err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, newError(t.Name(), ErrEmptyResponse)
	}

	t.log.Debug("tesseract recognised text", zap.Int("chars", len(text)), zap.String("language", t.language))
	return &Response{Text: text}, nil
}

func (t *Tesseract) recognize(data []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataPrefix != "" {
		client.TessdataPrefix = t.tessdataPrefix
	}
	if err := client.SetLanguage(strings.Split(t.language, "+")...); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// Version returns the installed Tesseract version.
func (t *Tesseract) Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
