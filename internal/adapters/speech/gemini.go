package speech

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultModel  = "gemini-2.5-flash"
	defaultPrompt = "Transcribe the speech in this audio verbatim. Reply with the transcript only, or with nothing if no speech is present."
)

// GeminiOption applies a configuration option to the GeminiTranscriber.
type GeminiOption func(*geminiConfig)

type geminiConfig struct {
	model   string
	baseURL string
	prompt  string
}

// WithModel sets the Gemini model used for transcription.
func WithModel(model string) GeminiOption {
	return func(c *geminiConfig) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the client at another Gemini-compatible endpoint.
func WithBaseURL(url string) GeminiOption {
	return func(c *geminiConfig) {
		c.baseURL = url
	}
}

// WithPrompt replaces the transcription instruction.
func WithPrompt(prompt string) GeminiOption {
	return func(c *geminiConfig) {
		if prompt != "" {
			c.prompt = prompt
		}
	}
}

// GeminiTranscriber turns audio clips into text with a Gemini model.
type GeminiTranscriber struct {
	client *genai.Client
	model  string
	prompt string
}

// NewGeminiTranscriber creates a transcriber authenticated with apiKey.
func NewGeminiTranscriber(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	cfg := geminiConfig{model: defaultModel, prompt: defaultPrompt}
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiTranscriber{client: client, model: cfg.model, prompt: cfg.prompt}, nil
}

// Transcribe returns the speech in clip as text. Silence yields "".
func (g *GeminiTranscriber) Transcribe(ctx context.Context, clip Clip) (string, error) {
	if len(clip.Data) == 0 {
		return "", ErrEmptyClip
	}
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: g.prompt},
			{InlineData: &genai.Blob{MIMEType: clip.MIMEType, Data: clip.Data}},
		},
	}}
	var temperature float32
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", clip.Name, err)
	}
	if resp == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.Text()), nil
}
