package provider

import (
	"context"
	"time"
)

// Generator turns a prompt into generated text
type Generator interface {
	// Generate returns the first candidate's text. A missing candidate yields
	// common.ErrMalformedResponse; network and HTTP failures yield a common.TransportError.
	Generate(ctx context.Context, prompt string) (string, error)

	// GetModel returns the model in use
	GetModel() string
}

// Config generation provider settings
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}
