package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Snippet modes understood by the page fetcher.
const (
	SnippetModeRaw      = "raw"
	SnippetModeStripped = "stripped"
	SnippetModeReadable = "readable"
)

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Breaker     struct {
		Enabled          bool          `mapstructure:"enabled"`
		FailureThreshold int           `mapstructure:"failure_threshold"`
		OpenTimeout      time.Duration `mapstructure:"open_timeout"`
	} `mapstructure:"breaker"`
}

type FetchConfig struct {
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SnippetLength int           `mapstructure:"snippet_length"`
	SnippetMode   string        `mapstructure:"snippet_mode"`
	MaxPageBytes  int64         `mapstructure:"max_page_bytes"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

type Config struct {
	Server struct {
		Host    string `mapstructure:"host"`
		Port    int    `mapstructure:"port"`
		Subpath string `mapstructure:"subpath"`
	} `mapstructure:"server"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Log    LogConfig    `mapstructure:"log"`
}

// APIKeyConfigured reports whether a completion API key was supplied.
func (c *Config) APIKeyConfigured() bool {
	return strings.TrimSpace(c.OpenAI.APIKey) != ""
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads the optional JSON config file at path and applies
// environment overrides (singleton). ROAST_<SECTION>_<KEY> overrides any key;
// OPENAI_API_KEY and OPENAI_BASE_URL are read without the prefix.
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		c, err := load(path)
		if err != nil {
			cfgErr = err
			return
		}
		cfg = c
	})
	return cfg, cfgErr
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ROAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "OPENAI_BASE_URL")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("invalid config format: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("invalid config format: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.subpath", "")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "gpt-4.1-mini")
	v.SetDefault("openai.temperature", 0.9)
	v.SetDefault("openai.max_tokens", 350)
	v.SetDefault("openai.timeout", time.Duration(0))
	v.SetDefault("openai.breaker.enabled", false)
	v.SetDefault("openai.breaker.failure_threshold", 5)
	v.SetDefault("openai.breaker.open_timeout", time.Minute)

	v.SetDefault("fetch.user_agent", "go-roast/1.0")
	v.SetDefault("fetch.timeout", time.Duration(0))
	v.SetDefault("fetch.snippet_length", 8000)
	v.SetDefault("fetch.snippet_mode", SnippetModeRaw)
	v.SetDefault("fetch.max_page_bytes", int64(5<<20))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "")
}

func (c *Config) validate() error {
	// Subpath is joined onto routes, so it must start with '/' when set.
	if c.Server.Subpath != "" && !strings.HasPrefix(c.Server.Subpath, "/") {
		return fmt.Errorf("server.subpath must start with '/': %q", c.Server.Subpath)
	}
	c.Server.Subpath = strings.TrimSuffix(c.Server.Subpath, "/")

	switch c.Fetch.SnippetMode {
	case SnippetModeRaw, SnippetModeStripped, SnippetModeReadable:
	default:
		return fmt.Errorf("unknown fetch.snippet_mode %q", c.Fetch.SnippetMode)
	}
	if c.Fetch.SnippetLength <= 0 {
		return errors.New("fetch.snippet_length must be positive")
	}
	if c.Fetch.MaxPageBytes <= 0 {
		return errors.New("fetch.max_page_bytes must be positive")
	}
	if c.OpenAI.Model == "" {
		return errors.New("openai.model must be set")
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("openai.temperature out of range [0,2]: %v", c.OpenAI.Temperature)
	}
	if c.OpenAI.MaxTokens <= 0 {
		return errors.New("openai.max_tokens must be positive")
	}
	if c.OpenAI.Timeout < 0 || c.Fetch.Timeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}
