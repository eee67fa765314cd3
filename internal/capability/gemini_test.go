package capability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiOptions{Model: "gemini-2.5-flash"}, nil)
	assert.Error(t, err)
}

func TestGemini_RequestConfig(t *testing.T) {
	g := &Gemini{model: "text-model", imageModel: "image-model", maxTokens: 100}

	model, cfg := g.requestConfig(Request{Instruction: "x"})
	assert.Equal(t, "text-model", model)
	assert.Equal(t, int32(100), cfg.MaxOutputTokens)
	assert.Empty(t, cfg.ResponseMIMEType)
	assert.Nil(t, cfg.ResponseSchema)

	model, cfg = g.requestConfig(Request{Instruction: "x", Schema: &Schema{Type: "object"}})
	assert.Equal(t, "text-model", model)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.NotNil(t, cfg.ResponseSchema)
	assert.Equal(t, genai.TypeObject, cfg.ResponseSchema.Type)

	model, cfg = g.requestConfig(Request{Instruction: "x", WantImage: true})
	assert.Equal(t, "image-model", model)
	assert.Equal(t, []string{"TEXT", "IMAGE"}, cfg.ResponseModalities)
}

func TestToGeminiSchema(t *testing.T) {
	s := &Schema{
		Type:        "object",
		Description: "a table",
		Properties: map[string]*Schema{
			"headers": {Type: "array", Items: &Schema{Type: "string"}},
			"rows":    {Type: "array", Items: &Schema{Type: "array", Items: &Schema{Type: "string"}}},
		},
		Required: []string{"headers", "rows"},
	}

	got := toGeminiSchema(s)
	assert.Equal(t, genai.TypeObject, got.Type)
	assert.Equal(t, "a table", got.Description)
	assert.Equal(t, []string{"headers", "rows"}, got.Required)
	assert.Equal(t, genai.TypeArray, got.Properties["headers"].Type)
	assert.Equal(t, genai.TypeString, got.Properties["headers"].Items.Type)
	assert.Equal(t, genai.TypeString, got.Properties["rows"].Items.Items.Type)
	assert.Nil(t, toGeminiSchema(nil))
}

func candidate(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: parts}}},
	}
}

func TestFromGeminiResponse(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}

	t.Run("joins text parts", func(t *testing.T) {
		resp, err := fromGeminiResponse(candidate(
			&genai.Part{Text: "thinking...", Thought: true},
			&genai.Part{Text: "Hello "},
			&genai.Part{Text: "world\n"},
		), false)
		require.NoError(t, err)
		assert.Equal(t, "Hello world", resp.Text)
		assert.Nil(t, resp.Image)
	})

	t.Run("picks the image", func(t *testing.T) {
		resp, err := fromGeminiResponse(candidate(
			&genai.Part{Text: "Here is the cleaned page."},
			&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: png}},
		), true)
		require.NoError(t, err)
		assert.Equal(t, png, resp.Image)
		assert.Equal(t, "image/png", resp.ImageMimeType)
	})

	t.Run("image wanted but missing", func(t *testing.T) {
		_, err := fromGeminiResponse(candidate(&genai.Part{Text: "I cannot edit images."}), true)
		assert.ErrorIs(t, err, ErrNoImage)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := fromGeminiResponse(&genai.GenerateContentResponse{}, false)
		assert.ErrorIs(t, err, ErrEmptyResponse)
		_, err = fromGeminiResponse(nil, false)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("blank text", func(t *testing.T) {
		_, err := fromGeminiResponse(candidate(&genai.Part{Text: "  "}), false)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}
