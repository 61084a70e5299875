package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/provider"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(provider.Config{
		APIKey:  "or-key",
		Model:   "meta/llama-test",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
}

func TestGenerate_ReturnsFirstChoice(t *testing.T) {
	t.Parallel()

	var gotAuth, gotPath string
	var gotBody Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gen-1","choices":[{"message":{"role":"assistant","content":"Retinol, Vitamin C"}}]}`))
	})

	text, err := client.Generate(context.Background(), "suggest")
	require.NoError(t, err)
	assert.Equal(t, "Retinol, Vitamin C", text)
	assert.Equal(t, "Bearer or-key", gotAuth)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "meta/llama-test", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "suggest", gotBody.Messages[0].Content)
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		malformed bool
		contains  string
	}{
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, malformed: true},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"role":"assistant","content":""}}]}`, malformed: true},
		{name: "not json", status: http.StatusOK, body: `<html>`, contains: "undecodable"},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down","code":429}}`, contains: "slow down"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Generate(context.Background(), "suggest")
			require.Error(t, err)
			if tt.malformed {
				assert.True(t, errors.Is(err, common.ErrMalformedResponse))
				return
			}
			assert.True(t, common.IsTransportError(err))
			assert.False(t, errors.Is(err, common.ErrMalformedResponse))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
