package capability

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/ironsheep/doc-tools-mcp/internal/imaging"
)

// ErrNoImage is returned when an image was requested but the answer held
// only text.
var ErrNoImage = errors.New("response contained no image")

// Gemini talks to the Gemini API. It supports response schemas and image
// output; image requests go to ImageModel.
type Gemini struct {
	client     *genai.Client
	model      string
	imageModel string
	maxTokens  int
	log        *zap.Logger
}

// GeminiOptions configures NewGemini.
type GeminiOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
	MaxTokens  int
}

// NewGemini creates a Gemini provider. No network traffic happens until
// the first Generate.
func NewGemini(ctx context.Context, opts GeminiOptions, log *zap.Logger) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini API key is not set")
	}
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, &CapabilityError{Op: "connect", Provider: "gemini", Err: err}
	}

	if opts.ImageModel == "" {
		opts.ImageModel = opts.Model
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gemini{
		client:     client,
		model:      opts.Model,
		imageModel: opts.ImageModel,
		maxTokens:  opts.MaxTokens,
		log:        log,
	}, nil
}

// Name implements Capability.
func (g *Gemini) Name() string { return "gemini" }

// Generate implements Capability.
func (g *Gemini) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	src, err := imaging.SourceFromBase64(req.ImageBase64, req.MimeType)
	if err != nil {
		return nil, err
	}

	model, cfg := g.requestConfig(req)
	parts := []*genai.Part{
		genai.NewPartFromBytes(src.Bytes(), src.MimeType()),
		genai.NewPartFromText(req.Instruction),
	}

	g.log.Debug("sending gemini request",
		zap.String("model", model),
		zap.Bool("schema", req.Schema != nil),
		zap.Bool("want_image", req.WantImage),
		zap.Int("image_bytes", src.Size()))

	resp, err := g.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return nil, newError(g.Name(), err)
	}

	out, err := fromGeminiResponse(resp, req.WantImage)
	if err != nil {
		return nil, newError(g.Name(), err)
	}
	return out, nil
}

func (g *Gemini) requestConfig(req Request) (string, *genai.GenerateContentConfig) {
	cfg := &genai.GenerateContentConfig{}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.maxTokens)
	}

	if req.WantImage {
		cfg.ResponseModalities = []string{"TEXT", "IMAGE"}
		return g.imageModel, cfg
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGeminiSchema(req.Schema)
	}
	return g.model, cfg
}

// toGeminiSchema converts a Schema to the API's upper-case type names.
func toGeminiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genai.Type(strings.ToUpper(s.Type)),
		Description: s.Description,
		Required:    s.Required,
		Items:       toGeminiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	return out
}

// fromGeminiResponse joins the text parts of the first candidate and picks
// its first inline image. Thought parts are skipped.
func fromGeminiResponse(resp *genai.GenerateContentResponse, wantImage bool) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}

	out := &Response{}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.InlineData != nil && out.Image == nil && strings.HasPrefix(part.InlineData.MIMEType, "image/") {
			out.Image = part.InlineData.Data
			out.ImageMimeType = part.InlineData.MIMEType
		}
	}
	out.Text = strings.TrimSpace(text.String())

	switch {
	case wantImage && len(out.Image) == 0:
		return nil, ErrNoImage
	case !wantImage && out.Text == "":
		return nil, ErrEmptyResponse
	}
	return out, nil
}
