package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyResponse is returned when the provider answered with nothing usable.
	ErrEmptyResponse = errors.New("empty response from provider")

	// ErrImageOutputUnsupported is returned for WantImage requests to
	// providers that only produce text.
	ErrImageOutputUnsupported = errors.New("provider cannot return images")

	// ErrStructuredOutputUnsupported is returned for Schema requests to
	// providers that cannot produce JSON.
	ErrStructuredOutputUnsupported = errors.New("provider cannot return structured data")

	// ErrInvalidRequest is returned when a request is missing its image or
	// instruction.
	ErrInvalidRequest = errors.New("invalid capability request")
)

// Capability is a multimodal model that interprets a single image.
type Capability interface {
	// Generate sends one request and returns the provider's answer. It makes
	// exactly one attempt.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name identifies the provider in logs and errors.
	Name() string
}

// Request is one image plus an instruction. When Schema is set the answer
// must be JSON matching it. When WantImage is set the answer must carry an
// image.
type Request struct {
	ImageBase64 string
	MimeType    string
	Instruction string
	Schema      *Schema
	WantImage   bool
}

// Validate checks the request carries an image and an instruction.
func (r Request) Validate() error {
	if strings.TrimSpace(r.ImageBase64) == "" {
		return fmt.Errorf("%w: image is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Instruction) == "" {
		return fmt.Errorf("%w: instruction is required", ErrInvalidRequest)
	}
	return nil
}

// Response is the provider's answer. Text holds free text or JSON; Image
// holds raw encoded bytes when an image was returned.
type Response struct {
	Text          string
	Image         []byte
	ImageMimeType string
}

// Schema is the subset of JSON Schema used to request structured output.
// Type is one of "object", "array", "string", "number", "integer", "boolean".
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// String renders the schema as compact JSON for use in prompts.
func (s *Schema) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// CapabilityError reports a failed provider call: transport failures, empty
// answers and answers that do not have the requested shape.
type CapabilityError struct {
	Op       string
	Provider string
	Err      error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s via %s failed: %v", e.Op, e.Provider, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

func newError(provider string, err error) error {
	var ce *CapabilityError
	if errors.As(err, &ce) {
		return err
	}
	return &CapabilityError{Op: "generate", Provider: provider, Err: err}
}
