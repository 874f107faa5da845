package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 120 * time.Second
)

// Gemini generates text through the Gemini API
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// GeminiOption is a functional option for Gemini
type GeminiOption func(*Gemini)

// GeminiWithModel sets the model name
func GeminiWithModel(model string) GeminiOption {
	return func(g *Gemini) {
		g.model = model
	}
}

// GeminiWithTemperature sets the sampling temperature
func GeminiWithTemperature(temperature float32) GeminiOption {
	return func(g *Gemini) {
		g.temperature = temperature
	}
}

// GeminiWithTimeout sets the per-call timeout
func GeminiWithTimeout(timeout time.Duration) GeminiOption {
	return func(g *Gemini) {
		g.timeout = timeout
	}
}

// NewGemini creates a Gemini generator
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	g := &Gemini{
		client:      client,
		model:       defaultModel,
		temperature: 0.2,
		timeout:     defaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate runs a single completion with the configured timeout.
// Timeout expiry and upstream errors surface as wrapped typed failures.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrEmptyResponse)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}

	result := builder.String()
	if result == "" {
		return "", ErrEmptyResponse
	}
	return result, nil
}

// Close releases the underlying client
func (g *Gemini) Close() error {
	return g.client.Close()
}
