package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/provider"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Client OpenRouter chat completions client
type Client struct {
	client *resty.Client
	cfg    provider.Config
}

// Message one chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request chat completions request body
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Choice one completion
type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// UsageInfo token accounting
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response chat completions response body
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Usage   UsageInfo `json:"usage"`
}

// Error API error body
type Error struct {
	Error struct {
		Message string      `json:"message"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// NewClient creates a client; an empty BaseURL uses the public endpoint
func NewClient(cfg provider.Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Title", "Skincare Advisor")

	return &Client{client: client, cfg: cfg}
}

// GetModel returns the configured model
func (c *Client) GetModel() string {
	return c.cfg.Model
}

// Generate sends prompt as a single user message and returns the first choice's content
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := &Request{
		Model:       c.cfg.Model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		common.LogAICall(c.cfg.Model, time.Since(start), err)
		return "", common.NewTransportError("generate", err)
	}

	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode(), errorMessage(resp.Body()))
		common.LogAICall(c.cfg.Model, time.Since(start), err)
		return "", common.NewTransportError("generate", err)
	}

	var result Response
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		err = fmt.Errorf("undecodable openrouter response: %w", err)
		common.LogAICall(c.cfg.Model, time.Since(start), err)
		return "", common.NewTransportError("generate", err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		common.LogWarn("openrouter response has no content",
			zap.String("model", c.cfg.Model),
			zap.Int("choices", len(result.Choices)),
		)
		return "", common.ErrMalformedResponse
	}

	common.LogAICall(c.cfg.Model, time.Since(start), nil)
	return result.Choices[0].Message.Content, nil
}

// Close releases idle connections
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

// errorMessage extracts error.message from an error body, falling back to the raw text
func errorMessage(body []byte) string {
	var e Error
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	s := string(body)
	if len(s) > 512 {
		s = s[:512] + "..."
	}
	return s
}
