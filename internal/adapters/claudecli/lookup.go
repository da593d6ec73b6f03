package claudecli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"ifcmass/internal/application"
	"ifcmass/internal/logger"
)

// Lookup implements ports.DensityLookup using the Claude Code CLI.
// The CLI has no sampling controls, so temperature is ignored.
type Lookup struct {
	model string
	run   runner
}

// runner executes a command and returns its stdout
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Option configures the Lookup
type Option func(*Lookup)

// WithModel sets the Claude model to use
func WithModel(model string) Option {
	return func(l *Lookup) {
		if model != "" {
			l.model = model
		}
	}
}

// NewLookup creates a new Claude CLI density lookup
func NewLookup(opts ...Option) *Lookup {
	l := &Lookup{
		model: "haiku",
		run:   execRunner,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// printResult is the part of `claude -p --output-format json` we read
type printResult struct {
	IsError bool    `json:"is_error"`
	Result  string  `json:"result"`
	CostUSD float64 `json:"total_cost_usd"`
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	output, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("claude CLI error: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("claude CLI error: %w", err)
	}
	return output, nil
}

// Model returns the configured model
func (l *Lookup) Model() string {
	return l.model
}

// LookupDensity asks Claude for the density of material in kg/m³
func (l *Lookup) LookupDensity(ctx context.Context, material string, _ float64) (int, error) {
	args := []string{
		"-p", application.DensityPrompt(material),
		"--output-format", "json",
		"--model", l.model,
	}

	output, err := l.run(ctx, "claude", args...)
	if err != nil {
		return 0, err
	}

	var response printResult
	if err := json.Unmarshal(output, &response); err != nil {
		return 0, fmt.Errorf("failed to parse claude response: %w", err)
	}

	if response.IsError {
		return 0, fmt.Errorf("claude returned an error: %s", response.Result)
	}

	logger.Debug("density response", "material", material, "model", l.model, "result", response.Result, "cost_usd", response.CostUSD)

	return parseResult(response.Result)
}

var codeBlockRe = regexp.MustCompile("```(?:\\w+)?\\s*\\n?([\\s\\S]*?)\\n?```")

// parseResult extracts the density from Claude's response text
func parseResult(result string) (int, error) {
	result = strings.TrimSpace(result)

	// Claude sometimes wraps short answers in a code block
	if matches := codeBlockRe.FindStringSubmatch(result); len(matches) > 1 {
		result = matches[1]
	}

	return application.ParseDensity(result)
}

// IsAvailable checks if the claude CLI is installed and accessible
func (l *Lookup) IsAvailable() bool {
	_, err := exec.LookPath("claude")
	return err == nil
}
