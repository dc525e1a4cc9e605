package llm

import (
	"errors"
	"time"

	"go-roast/internal/config"
)

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrAPIKeyMissing is returned by NewClient when no API key is configured.
var ErrAPIKeyMissing = errors.New("OPENAI_API_KEY not configured")

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options controls how completions are requested.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // 0 keeps the transport default

	BreakerEnabled   bool
	FailureThreshold int
	OpenTimeout      time.Duration
}

// OptionsFromConfig maps the openai config section onto Options.
func OptionsFromConfig(cfg config.OpenAIConfig) Options {
	return Options{
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.BaseURL,
		Model:            cfg.Model,
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
		Timeout:          cfg.Timeout,
		BreakerEnabled:   cfg.Breaker.Enabled,
		FailureThreshold: cfg.Breaker.FailureThreshold,
		OpenTimeout:      cfg.Breaker.OpenTimeout,
	}
}
