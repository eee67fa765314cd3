// Package document runs the document-reading tasks (OCR, handwriting
// transcription, table and field extraction, handwriting removal) against
// an AI capability and turns the answers into typed results.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/doc-tools-mcp/internal/capability"
	"github.com/ironsheep/doc-tools-mcp/internal/imaging"
)

// CleanedFilename is the download name of a handwriting-removal result.
const CleanedFilename = "cleaned-document.png"

// Task names, used as CapabilityError.Op.
const (
	TaskOCR                   = "ocr"
	TaskTranscribeHandwriting = "transcribe_handwriting"
	TaskExtractTable          = "extract_table"
	TaskExtractFields         = "extract_fields"
	TaskRemoveHandwriting     = "remove_handwriting"
)

// ErrMalformedResponse is wrapped when a structured answer cannot be parsed.
var ErrMalformedResponse = errors.New("malformed structured response")

// TextResult is the answer of a text task.
type TextResult struct {
	Text string `json:"text"`
}

// TableData is an extracted table. Every row has len(Headers) cells.
type TableData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Field is one labelled value.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FieldsResult holds extracted fields in document order.
type FieldsResult struct {
	Fields []Field `json:"fields"`
}

// ImageResult is a PNG produced by an image task.
type ImageResult struct {
	Filename    string `json:"filename"`
	MimeType    string `json:"mime_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	Data        []byte `json:"-"`
}

// Service runs document tasks. It is safe for concurrent use if the
// capability is.
type Service struct {
	cap     capability.Capability
	encoder imaging.Encoder
	log     *zap.Logger
}

// NewService creates a service over c.
func NewService(c capability.Capability, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cap: c, encoder: imaging.Encoder{Quality: imaging.DefaultQuality}, log: log}
}

// OCR transcribes all text in the image.
func (s *Service) OCR(ctx context.Context, src *imaging.ImageSource) (*TextResult, error) {
	return s.text(ctx, TaskOCR, src, ocrPrompt)
}

// TranscribeHandwriting transcribes only the handwritten text.
func (s *Service) TranscribeHandwriting(ctx context.Context, src *imaging.ImageSource) (*TextResult, error) {
	return s.text(ctx, TaskTranscribeHandwriting, src, handwritingPrompt)
}

func (s *Service) text(ctx context.Context, task string, src *imaging.ImageSource, prompt string) (*TextResult, error) {
	resp, err := s.generate(ctx, task, src, capability.Request{Instruction: prompt})
	if err != nil {
		return nil, err
	}
	return &TextResult{Text: resp.Text}, nil
}

// ExtractTable extracts the main table. Rows are padded with empty cells or
// truncated to the header width.
func (s *Service) ExtractTable(ctx context.Context, src *imaging.ImageSource) (*TableData, error) {
	resp, err := s.generate(ctx, TaskExtractTable, src, capability.Request{
		Instruction: tablePrompt,
		Schema:      tableSchema(),
	})
	if err != nil {
		return nil, err
	}

	var table TableData
	if err := decodeJSON(resp.Text, &table); err != nil {
		return nil, s.fail(TaskExtractTable, err)
	}
	table.normalize()
	return &table, nil
}

func (t *TableData) normalize() {
	if t.Headers == nil {
		t.Headers = []string{}
	}
	if len(t.Headers) == 0 {
		for _, row := range t.Rows {
			if len(row) > len(t.Headers) {
				t.Headers = make([]string, len(row))
			}
		}
	}

	width := len(t.Headers)
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		out := make([]string, width)
		copy(out, row)
		rows = append(rows, out)
	}
	t.Rows = rows
}

// ExtractFields extracts labelled fields. When wanted is non-empty only
// those labels are requested.
func (s *Service) ExtractFields(ctx context.Context, src *imaging.ImageSource, wanted []string) (*FieldsResult, error) {
	resp, err := s.generate(ctx, TaskExtractFields, src, capability.Request{
		Instruction: fieldsPrompt(wanted),
		Schema:      fieldsSchema(),
	})
	if err != nil {
		return nil, err
	}

	var result FieldsResult
	if err := decodeJSON(resp.Text, &result); err != nil {
		return nil, s.fail(TaskExtractFields, err)
	}

	fields := make([]Field, 0, len(result.Fields))
	for _, f := range result.Fields {
		f.Label = strings.TrimSpace(f.Label)
		f.Value = strings.TrimSpace(f.Value)
		if f.Label == "" {
			continue
		}
		fields = append(fields, f)
	}
	result.Fields = fields
	return &result, nil
}

// RemoveHandwriting asks for a copy of the image without handwriting and
// returns it as PNG.
func (s *Service) RemoveHandwriting(ctx context.Context, src *imaging.ImageSource) (*ImageResult, error) {
	resp, err := s.generate(ctx, TaskRemoveHandwriting, src, capability.Request{
		Instruction: removeHandwritingPrompt,
		WantImage:   true,
	})
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(ctx, imaging.NewSource(resp.Image, resp.ImageMimeType))
	if err != nil {
		return nil, s.fail(TaskRemoveHandwriting, err)
	}
	out, err := s.encoder.Encode(img, "image/png")
	if err != nil {
		return nil, s.fail(TaskRemoveHandwriting, err)
	}
	return &ImageResult{
		Filename:    CleanedFilename,
		MimeType:    out.MimeType,
		Width:       out.Width,
		Height:      out.Height,
		ImageBase64: out.ImageBase64,
		Data:        out.Data,
	}, nil
}

func (s *Service) generate(ctx context.Context, task string, src *imaging.ImageSource, req capability.Request) (*capability.Response, error) {
	if src == nil || src.Size() == 0 {
		return nil, &imaging.DecodeError{Err: fmt.Errorf("no image provided")}
	}
	req.ImageBase64 = src.Base64()
	req.MimeType = src.MimeType()

	s.log.Debug("running document task",
		zap.String("task", task),
		zap.String("provider", s.cap.Name()),
		zap.String("mime_type", src.MimeType()))

	resp, err := s.cap.Generate(ctx, req)
	if err != nil {
		var de *imaging.DecodeError
		if errors.As(err, &de) || errors.Is(err, capability.ErrInvalidRequest) {
			return nil, err
		}
		return nil, s.fail(task, err)
	}
	return resp, nil
}

// fail reports err as a CapabilityError for task, keeping the provider
// recorded by the capability when there is one.
func (s *Service) fail(task string, err error) error {
	provider := s.cap.Name()
	var ce *capability.CapabilityError
	if errors.As(err, &ce) {
		provider = ce.Provider
		err = ce.Err
	}
	s.log.Warn("document task failed", zap.String("task", task), zap.String("provider", provider), zap.Error(err))
	return &capability.CapabilityError{Op: task, Provider: provider, Err: err}
}

// decodeJSON parses a model answer, tolerating a surrounding markdown code
// fence and leading prose before the first brace.
func decodeJSON(text string, v any) error {
	body := stripCodeFence(text)
	if i := strings.IndexByte(body, '{'); i > 0 {
		body = body[i:]
	}
	if j := strings.LastIndexByte(body, '}'); j >= 0 && j < len(body)-1 {
		body = body[:j+1]
	}
	if body == "" {
		return fmt.Errorf("%w: empty answer", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		// drop the language tag line
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
