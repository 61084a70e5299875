package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeAI struct{}

func (fakeAI) Enabled() bool    { return true }
func (fakeAI) GetModel() string { return "gemini-2.0-flash" }
func (fakeAI) CacheStats() map[string]interface{} {
	return map[string]interface{}{"backend": "memory"}
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.HealthCheck)
	r.GET("/ready", h.ReadinessCheck)
	r.GET("/live", h.LivenessCheck)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthCheck(t *testing.T) {
	w := serve(NewHandler("1.2.3", fakePinger{}, fakeAI{}), "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	require.NotNil(t, resp.AI)
	assert.Equal(t, "gemini-2.0-flash", resp.AI.Model)
	assert.Equal(t, "memory", resp.AI.Cache["backend"])
}

func TestReadinessCheck(t *testing.T) {
	w := serve(NewHandler("1", fakePinger{}, nil), "/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(NewHandler("1", fakePinger{err: errors.New("dial tcp: refused")}, nil), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "STORE_UNAVAILABLE")
}

func TestLivenessCheck(t *testing.T) {
	w := serve(NewHandler("1", nil, nil), "/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}
