package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prison-records/internal/logging"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is used when neither the request nor the client names one.
const DefaultModel = "gemini-2.5-flash"

// Gemini generates text through Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGemini creates a Gemini client for apiKey.
func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  model,
		logger: logging.OrNop(logger),
	}, nil
}

// GenerateText sends req.Prompt as a single user turn.
func (g *Gemini) GenerateText(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	var cfg *genai.GenerateContentConfig
	if req.Schema != nil {
		cfg = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   req.Schema,
		}
	}

	g.logger.Debug("generate content",
		zap.String("model", model),
		zap.Int("prompt_bytes", len(req.Prompt)),
		zap.Bool("structured", req.Schema != nil))

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", &CapabilityError{Op: "generate content", Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &CapabilityError{Op: "generate content", Err: errors.New("empty response")}
	}
	return text, nil
}
