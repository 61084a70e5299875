package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/provider"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client generateContent API client
type Client struct {
	client *resty.Client
	cfg    provider.Config
}

// Part a text fragment of a message
type Part struct {
	Text string `json:"text"`
}

// Content one conversation turn
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig sampling settings
type GenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// Request generateContent request body
type Request struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Candidate one generated answer
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// Response generateContent response body
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// Text returns candidates[0].content.parts[0].text
func (r *Response) Text() (string, bool) {
	if r == nil || len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	return r.Candidates[0].Content.Parts[0].Text, true
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
		SetHeader("Content-Type", "application/json")

	return &Client{
		client: client,
		cfg:    cfg,
	}
}

// GetModel returns the configured model
func (c *Client) GetModel() string {
	return c.cfg.Model
}

// Generate sends one prompt and returns the first candidate's text
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := &Request{
		Contents: []Content{
			{
				Role:  "user",
				Parts: []Part{{Text: prompt}},
			},
		},
	}
	if c.cfg.MaxTokens > 0 || c.cfg.Temperature > 0 {
		req.GenerationConfig = &GenerationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxTokens,
		}
	}

	common.LogDebug("sending generation request",
		zap.String("model", c.cfg.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("key", c.cfg.APIKey).
		SetBody(req).
		Post(fmt.Sprintf("/models/%s:generateContent", c.cfg.Model))
	if err != nil {
		common.LogAICall(c.cfg.Model, time.Since(start), err)
		return "", common.NewTransportError("generate", err)
	}

	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("generation service returned status %d: %s", resp.StatusCode(), truncate(resp.String(), 512))
		common.LogAICall(c.cfg.Model, time.Since(start), err)
		return "", common.NewTransportError("generate", err)
	}

	var result Response
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		err = fmt.Errorf("undecodable generation response: %w", err)
		common.LogAICall(c.cfg.Model, time.Since(start), err)
		return "", common.NewTransportError("generate", err)
	}

	text, ok := result.Text()
	if !ok {
		common.LogWarn("generation response has no candidate text",
			zap.String("model", c.cfg.Model),
			zap.Int("candidates", len(result.Candidates)),
		)
		return "", common.ErrMalformedResponse
	}

	common.LogAICall(c.cfg.Model, time.Since(start), nil)
	return text, nil
}

// Close releases idle connections
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
