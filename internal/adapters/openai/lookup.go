package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"ifcmass/internal/application"
	"ifcmass/internal/logger"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gpt-4-turbo"

// ErrMissingKey is returned when the lookup is built without an API key
var ErrMissingKey = errors.New("missing OpenAI API key")

// Lookup implements ports.DensityLookup with an OpenAI chat completion
type Lookup struct {
	client *openai.Client
	model  string
}

// Option configures the Lookup
type Option func(*settings)

type settings struct {
	model   string
	baseURL string
	retries int
}

// WithModel sets the chat model to query
func WithModel(model string) Option {
	return func(s *settings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint
func WithBaseURL(url string) Option {
	return func(s *settings) {
		s.baseURL = url
	}
}

// WithMaxRetries overrides the client's retry count
func WithMaxRetries(n int) Option {
	return func(s *settings) {
		s.retries = n
	}
}

// NewLookup creates a lookup authenticated with apiKey
func NewLookup(apiKey string, opts ...Option) (*Lookup, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}

	s := settings{model: DefaultModel, retries: -1}
	for _, opt := range opts {
		opt(&s)
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if s.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(s.baseURL))
	}
	if s.retries >= 0 {
		clientOpts = append(clientOpts, option.WithMaxRetries(s.retries))
	}

	client := openai.NewClient(clientOpts...)
	return &Lookup{client: &client, model: s.model}, nil
}

// Model returns the configured chat model
func (l *Lookup) Model() string {
	return l.model
}

// LookupDensity asks the model for the density of material in kg/m³
func (l *Lookup) LookupDensity(ctx context.Context, material string, temperature float64) (int, error) {
	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(l.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(application.DensityPrompt(material)),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(application.DensityMaxTokens),
	}

	resp, err := l.client.Chat.Completions.New(ctx, body)
	if err != nil {
		return 0, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("openai chat completion: empty response")
	}

	content := resp.Choices[0].Message.Content
	logger.Debug("density response", "material", material, "model", l.model, "content", content)

	return application.ParseDensity(content)
}
