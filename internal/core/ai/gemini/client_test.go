package gemini

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
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
}

func TestGenerate_ReturnsFirstCandidateText(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	var gotBody Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Niacinamide: Calms redness"}]}}]}`))
	})

	text, err := client.Generate(context.Background(), "suggest ingredients")
	require.NoError(t, err)
	assert.Equal(t, "Niacinamide: Calms redness", text)
	assert.Equal(t, "/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "user", gotBody.Contents[0].Role)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "suggest ingredients", gotBody.Contents[0].Parts[0].Text)
}

func TestGenerate_MalformedResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "no candidates", body: `{}`},
		{name: "empty candidates", body: `{"candidates":[]}`},
		{name: "no parts", body: `{"candidates":[{"content":{"parts":[]}}]}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Generate(context.Background(), "p")
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrMalformedResponse))
			assert.False(t, common.IsTransportError(err))
		})
	}
}

func TestGenerate_UndecodableBodyIsTransportError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>502 upstream proxy error</html>`))
	})

	_, err := client.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, common.IsTransportError(err))
	assert.False(t, errors.Is(err, common.ErrMalformedResponse))
}

func TestGenerate_HTTPErrorIsTransportError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	})

	_, err := client.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, common.IsTransportError(err))
	assert.Contains(t, err.Error(), "503")
}

func TestGenerate_CanceledContext(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Generate(ctx, "p")
	require.Error(t, err)
	assert.True(t, common.IsTransportError(err))
}
