// Package ai wraps the Gemini text-generation API.
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"
)

const generateTimeout = 30 * time.Second

// contentGenerator is the subset of the genai models service used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Gemini struct {
	Model  string
	models contentGenerator
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &Gemini{Model: model, models: client.Models}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	c, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	resp, err := g.models.GenerateContent(c, g.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}
