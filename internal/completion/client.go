// Package completion sends a conversation to an OpenAI-compatible chat
// completion endpoint and returns the first choice.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"glowdesk/internal/models"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrRequestFailed wraps every transport, status and response-shape failure.
var ErrRequestFailed = errors.New("completion request failed")

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxTokens  int64
	Timeout    time.Duration
	MaxRetries int
	Headers    map[string]string
}

// Reply is the assistant text plus the usage reported for it.
type Reply struct {
	Content          string
	PromptTokens     int64
	CompletionTokens int64
}

type Client struct {
	client    openai.Client
	model     string
	maxTokens int64
}

func New(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}

	return &Client{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *Client) Model() string { return c.model }

// Complete sends msgs and returns the trimmed content of the first choice.
func (c *Client) Complete(ctx context.Context, msgs []models.Message) (Reply, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toParams(msgs),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(c.maxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, fmt.Errorf("%w: response has no choices", ErrRequestFailed)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return Reply{}, fmt.Errorf("%w: empty response from model", ErrRequestFailed)
	}

	return Reply{
		Content:          content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func toParams(msgs []models.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case models.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case models.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
