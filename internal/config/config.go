package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"ifcmass/internal/logger"
)

const (
	DefaultKeyPath   = "key.json"
	DefaultCachePath = "material_densities.json"
	DefaultOllamaURL = "http://localhost:11434"
)

// Store backends
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Lookup backends
const (
	LookupOpenAI = "openai"
	LookupOllama = "ollama"
	LookupClaude = "claude"
	LookupNone   = "none"
)

// ErrNoAPIKey is returned when neither the key file nor OPENAI_API_KEY provide a key
var ErrNoAPIKey = errors.New("OpenAI API key not found")

// Config holds the settings shared by the CLI and the MCP server
type Config struct {
	KeyPath     string
	CachePath   string // Empty selects the backend's default location
	Store       string
	Lookup      string
	Model       string // Empty selects the backend's default model
	OllamaURL   string
	Temperature float64
	Debug       bool
}

// LoadEnv reads .env files into the environment. Missing files are not an error.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}
}

// FromEnv builds a Config from IFCMASS_* environment variables
func FromEnv() Config {
	return Config{
		KeyPath:     GetEnvString("IFCMASS_KEY", DefaultKeyPath),
		CachePath:   GetEnvString("IFCMASS_CACHE", ""),
		Store:       strings.ToLower(GetEnvString("IFCMASS_STORE", StoreJSON)),
		Lookup:      strings.ToLower(GetEnvString("IFCMASS_LOOKUP", LookupOpenAI)),
		Model:       GetEnvString("IFCMASS_MODEL", ""),
		OllamaURL:   GetEnvString("IFCMASS_OLLAMA_URL", DefaultOllamaURL),
		Temperature: GetEnvFloat("IFCMASS_TEMPERATURE", 0),
		Debug:       GetEnvBool("IFCMASS_DEBUG", false),
	}
}

// Validate checks the backend names
func (c Config) Validate() error {
	switch c.Store {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want json or sqlite)", c.Store)
	}
	switch c.Lookup {
	case LookupOpenAI, LookupOllama, LookupClaude, LookupNone:
	default:
		return fmt.Errorf("unknown lookup %q (want openai, ollama, claude or none)", c.Lookup)
	}
	return nil
}

func GetEnvString(key string, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func GetEnvFloat(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func GetEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if value == "true" || value == "false" {
		return value == "true"
	}
	return defaultValue
}

type keyFile struct {
	Key string `json:"key"`
}

// LoadAPIKey reads the "key" field of the JSON file at path, falling back
// to OPENAI_API_KEY when the file is missing or has no key
func LoadAPIKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		var kf keyFile
		if err := json.Unmarshal(data, &kf); err != nil {
			logger.Warn("Key file is not valid JSON", "path", path, "err", err)
		} else if kf.Key != "" {
			return kf.Key, nil
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w: provide a valid key file (%s) or set OPENAI_API_KEY", ErrNoAPIKey, path)
}
