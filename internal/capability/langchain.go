package capability

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/ironsheep/doc-tools-mcp/internal/imaging"
)

// LangChain adapts any langchaingo vision model. Structured requests use
// JSON mode with the schema appended to the instruction. Image output is
// not supported.
type LangChain struct {
	provider  string
	model     string
	llm       llms.Model
	maxTokens int
	log       *zap.Logger
}

// NewLangChain wraps llm. provider selects how the image is attached:
// openai and mistral take a data URL, the others raw bytes.
func NewLangChain(provider, model string, llm llms.Model, maxTokens int, log *zap.Logger) *LangChain {
	if log == nil {
		log = zap.NewNop()
	}
	return &LangChain{
		provider:  strings.ToLower(provider),
		model:     model,
		llm:       llm,
		maxTokens: maxTokens,
		log:       log,
	}
}

// Name implements Capability.
func (p *LangChain) Name() string { return p.provider }

// Generate implements Capability.
func (p *LangChain) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.WantImage {
		return nil, newError(p.Name(), ErrImageOutputUnsupported)
	}
	src, err := imaging.SourceFromBase64(req.ImageBase64, req.MimeType)
	if err != nil {
		return nil, err
	}

	instruction := req.Instruction
	var opts []llms.CallOption
	if req.Schema != nil {
		instruction += "\n\nRespond with JSON only, matching this JSON schema:\n" + req.Schema.String()
		opts = append(opts, llms.WithJSONMode())
	}
	if p.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.maxTokens))
	}

	var imagePart llms.ContentPart
	switch p.provider {
	case "openai", "mistral":
		imagePart = llms.ImageURLPart("data:" + src.MimeType() + ";base64," + src.Base64())
	default:
		imagePart = llms.BinaryPart(src.MimeType(), src.Bytes())
	}

	p.log.Debug("sending vision request",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Bool("schema", req.Schema != nil),
		zap.Int("image_bytes", src.Size()))

	completion, err := p.llm.GenerateContent(ctx, []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{imagePart, llms.TextPart(instruction)},
		},
	}, opts...)
	if err != nil {
		return nil, newError(p.Name(), err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return nil, newError(p.Name(), ErrEmptyResponse)
	}

	text := strings.TrimSpace(completion.Choices[0].Content)
	if text == "" {
		return nil, newError(p.Name(), ErrEmptyResponse)
	}
	return &Response{Text: text}, nil
}
