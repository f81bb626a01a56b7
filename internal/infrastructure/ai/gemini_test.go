package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubModels struct {
	model  string
	prompt string
	resp   *genai.GenerateContentResponse
	err    error
}

func (s *stubModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.model = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		s.prompt = contents[0].Parts[0].Text
	}
	return s.resp, s.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
	}}}
}

func TestGemini_Generate(t *testing.T) {
	stub := &stubModels{resp: textResponse("  All good.  ")}
	g := &Gemini{Model: "gemini-2.0-flash", models: stub}

	out, err := g.Generate(context.Background(), "summarize")

	require.NoError(t, err)
	assert.Equal(t, "All good.", out)
	assert.Equal(t, "gemini-2.0-flash", stub.model)
	assert.Equal(t, "summarize", stub.prompt)
}

func TestGemini_EmptyAndErrors(t *testing.T) {
	g := &Gemini{Model: "m", models: &stubModels{resp: textResponse("  ")}}
	_, err := g.Generate(context.Background(), "x")
	assert.Error(t, err)

	g = &Gemini{Model: "m", models: &stubModels{err: errors.New("quota exceeded")}}
	_, err = g.Generate(context.Background(), "x")
	assert.EqualError(t, err, "quota exceeded")

	_, err = NewGemini(context.Background(), "", "m")
	assert.Error(t, err)
}
