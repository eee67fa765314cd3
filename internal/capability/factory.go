package capability

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/ironsheep/doc-tools-mcp/internal/config"
)

// DefaultModels is the model used per provider when none is configured.
var DefaultModels = map[string]string{
	"gemini":    "gemini-2.5-flash",
	"openai":    "gpt-4o",
	"ollama":    "llava",
	"anthropic": "claude-sonnet-4-5",
	"mistral":   "pixtral-12b-latest",
}

// apiKeyEnv lists the conventional variables each provider's key is read
// from when ai.api_key is empty.
var apiKeyEnv = map[string][]string{
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"mistral":   {"MISTRAL_API_KEY"},
}

// New builds the configured provider wrapped with the request timeout.
func New(ctx context.Context, ai config.AIConfig, ocr config.OCRConfig, log *zap.Logger) (Capability, error) {
	if log == nil {
		log = zap.NewNop()
	}
	provider := strings.ToLower(ai.Provider)
	model := ai.Model
	if model == "" {
		model = DefaultModels[provider]
	}
	key := apiKey(provider, ai.APIKey)
	plog := log.Named("capability").With(zap.String("provider", provider), zap.String("model", model))

	var c Capability
	switch provider {
	case "gemini":
		g, err := NewGemini(ctx, GeminiOptions{
			APIKey:     key,
			BaseURL:    ai.BaseURL,
			Model:      model,
			ImageModel: ai.ImageModel,
			MaxTokens:  ai.MaxTokens,
		}, plog)
		if err != nil {
			return nil, err
		}
		c = g
	case "openai", "ollama", "anthropic", "mistral":
		llm, err := newLLM(provider, model, key, ai.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("error creating %s client: %w", provider, err)
		}
		c = NewLangChain(provider, model, llm, ai.MaxTokens, plog)
	case "tesseract":
		c = NewTesseract(ocr.Language, ocr.TessdataPrefix, plog)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", ai.Provider)
	}

	plog.Info("AI capability ready")
	return WithTimeout(c, ai.Timeout, plog), nil
}

func newLLM(provider, model, key, baseURL string) (llms.Model, error) {
	switch provider {
	case "openai":
		if key == "" {
			return nil, fmt.Errorf("OpenAI API key is not set")
		}
		opts := []openai.Option{openai.WithModel(model), openai.WithToken(key)}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		return openai.New(opts...)
	case "ollama":
		host := baseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://127.0.0.1:11434"
		}
		return ollama.New(ollama.WithModel(model), ollama.WithServerURL(host))
	case "anthropic":
		if key == "" {
			return nil, fmt.Errorf("Anthropic API key is not set")
		}
		return anthropic.New(anthropic.WithModel(model), anthropic.WithToken(key))
	case "mistral":
		if key == "" {
			return nil, fmt.Errorf("Mistral API key is not set")
		}
		return mistral.New(mistral.WithModel(model), mistral.WithAPIKey(key))
	}
	return nil, fmt.Errorf("unsupported langchain provider: %s", provider)
}

func apiKey(provider, configured string) string {
	if configured != "" {
		return configured
	}
	for _, name := range apiKeyEnv[provider] {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

type timeoutCapability struct {
	next    Capability
	timeout time.Duration
	log     *zap.Logger
}

// WithTimeout bounds every Generate call of c by timeout and logs its
// outcome. A non-positive timeout only adds logging.
func WithTimeout(c Capability, timeout time.Duration, log *zap.Logger) Capability {
	if log == nil {
		log = zap.NewNop()
	}
	return &timeoutCapability{next: c, timeout: timeout, log: log}
}

func (t *timeoutCapability) Name() string { return t.next.Name() }

func (t *timeoutCapability) Generate(ctx context.Context, req Request) (*Response, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := t.next.Generate(ctx, req)
	if err != nil {
		t.log.Warn("capability request failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return nil, err
	}
	t.log.Info("capability request completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("text_chars", len(resp.Text)),
		zap.Int("image_bytes", len(resp.Image)))
	return resp, nil
}
