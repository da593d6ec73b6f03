package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"ifcmass/internal/application"
	"ifcmass/internal/logger"
)

const (
	// DefaultURL is the address of a local Ollama server
	DefaultURL = "http://localhost:11434"
	// DefaultModel is used when no model is configured
	DefaultModel = "llama3.2"
)

// Lookup implements ports.DensityLookup against an Ollama server
type Lookup struct {
	model  string
	client *api.Client
}

// Params configures a Lookup
type Params struct {
	BaseURL string
	Model   string
	APIKey  string // Sent as a bearer token when set
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewLookup creates a lookup for the server at params.BaseURL
func NewLookup(params Params) (*Lookup, error) {
	base := params.BaseURL
	if base == "" {
		base = DefaultURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", base, err)
	}

	model := params.Model
	if model == "" {
		model = DefaultModel
	}

	httpClient := http.DefaultClient
	if params.APIKey != "" {
		httpClient = &http.Client{
			Transport: &headerTransport{
				headers: map[string]string{"Authorization": "Bearer " + params.APIKey},
				rt:      http.DefaultTransport,
			},
		}
	}

	return &Lookup{
		model:  model,
		client: api.NewClient(u, httpClient),
	}, nil
}

// Model returns the configured model
func (l *Lookup) Model() string {
	return l.model
}

// LookupDensity asks the model for the density of material in kg/m³
func (l *Lookup) LookupDensity(ctx context.Context, material string, temperature float64) (int, error) {
	stream := false
	req := &api.ChatRequest{
		Model: l.model,
		Messages: []api.Message{
			{Role: "user", Content: application.DensityPrompt(material)},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": temperature,
			"num_predict": application.DensityMaxTokens,
		},
	}

	var content string
	err := l.client.Chat(ctx, req, func(cr api.ChatResponse) error {
		content += cr.Message.Content
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("ollama chat: %w", err)
	}

	logger.Debug("density response", "material", material, "model", l.model, "content", content)

	return application.ParseDensity(content)
}
