package config

import (
	"io"

	"ifcmass/internal/adapters/claudecli"
	"ifcmass/internal/adapters/jsonstore"
	"ifcmass/internal/adapters/ollama"
	"ifcmass/internal/adapters/openai"
	"ifcmass/internal/adapters/sqlite"
	"ifcmass/internal/logger"
	"ifcmass/internal/ports"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenStore opens the configured density store. The returned closer
// must be closed when the store is no longer needed.
func OpenStore(cfg Config) (ports.DensityStore, io.Closer, error) {
	switch cfg.Store {
	case StoreSQLite:
		path := cfg.CachePath
		if path == "" {
			path = sqlite.DefaultPath()
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("Using sqlite density store", "path", store.Path())
		return store, store, nil
	default:
		return OpenJSONStore(cfg.CachePath), nopCloser{}, nil
	}
}

// OpenJSONStore returns a JSON store at path, or the default cache file
func OpenJSONStore(path string) *jsonstore.Store {
	if path == "" {
		path = DefaultCachePath
	}
	logger.Debug("Using json density store", "path", path)
	return jsonstore.NewStore(path)
}

// NewLookup builds the configured density lookup. A lookup that cannot be
// configured yields nil: the run continues with cached densities only.
func NewLookup(cfg Config) ports.DensityLookup {
	switch cfg.Lookup {
	case LookupNone:
		return nil

	case LookupOllama:
		l, err := ollama.NewLookup(ollama.Params{BaseURL: cfg.OllamaURL, Model: cfg.Model})
		if err != nil {
			logger.Warn("Ollama lookup unavailable", "err", err)
			return nil
		}
		return l

	case LookupClaude:
		l := claudecli.NewLookup(claudecli.WithModel(cfg.Model))
		if !l.IsAvailable() {
			logger.Warn("claude CLI not found, density lookups disabled")
			return nil
		}
		return l

	default:
		key, err := LoadAPIKey(cfg.KeyPath)
		if err != nil {
			logger.Warn("Density lookups disabled", "err", err)
			return nil
		}
		l, err := openai.NewLookup(key, openai.WithModel(cfg.Model))
		if err != nil {
			logger.Warn("OpenAI lookup unavailable", "err", err)
			return nil
		}
		return l
	}
}
