package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"go-roast/internal/logger"
)

// Client requests chat completions from an OpenAI-compatible API.
// It never retries; a failed call is reported to the caller as is.
type Client struct {
	api         openai.Client
	model       string
	temperature float64
	maxTokens   int
	breaker     *CircuitBreaker
	logger      *zap.Logger
}

// NewClient validates opts and builds a client. A blank API key yields ErrAPIKeyMissing.
func NewClient(opts Options, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrAPIKeyMissing
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("model must be set")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("llm")

	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	c := &Client{
		api:         openai.NewClient(clientOpts...),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		logger:      log,
	}
	if opts.BreakerEnabled {
		c.breaker = NewCircuitBreaker(opts.FailureThreshold, opts.OpenTimeout, log)
	}
	return c, nil
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

// Breaker returns the circuit breaker, or nil when disabled.
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

// Complete sends messages and returns the content of the first choice.
// A reply without choices is treated as empty content.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.breaker == nil {
		return c.complete(ctx, messages)
	}
	var content string
	err := c.breaker.Call(func() error {
		var err error
		content, err = c.complete(ctx, messages)
		return err
	})
	return content, err
}

func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    convertMessages(messages),
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		c.logger.Warn("completion returned no choices", logger.RequestField(ctx), zap.String("model", c.model))
		return "", nil
	}

	c.logger.Debug("completion received",
		logger.RequestField(ctx),
		zap.String("model", completion.Model),
		zap.Int64("completion_tokens", completion.Usage.CompletionTokens),
		zap.String("finish_reason", completion.Choices[0].FinishReason))
	return completion.Choices[0].Message.Content, nil
}

func convertMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}
