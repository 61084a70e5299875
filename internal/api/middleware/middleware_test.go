package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	r.GET("/ping", ok)
	r.POST("/ping", ok)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	return r
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	w := do(r, http.MethodPost, "/ping", "small", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/ping", strings.Repeat("x", 64), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
}

func TestDeduplicator(t *testing.T) {
	d := NewDeduplicator(time.Minute)
	t.Cleanup(d.Close)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	r := newEngine(d.Middleware())

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/ping", `{"a":1}`, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/ping", `{"a":1}`, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/ping", `{"a":2}`, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", nil).Code)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/ping", `{"a":1}`, nil).Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.lastTime = now

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	now = now.Add(30 * time.Second)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestRateLimit_SetsRetryAfter(t *testing.T) {
	r := newEngine(RateLimit(NewRateLimiter(1, time.Hour), time.Minute))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", nil).Code)
	w := do(r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestAdminToken(t *testing.T) {
	open := newEngine(AdminToken(""))
	assert.Equal(t, http.StatusOK, do(open, http.MethodGet, "/ping", "", nil).Code)

	guarded := newEngine(AdminToken("s3cret"))
	assert.Equal(t, http.StatusUnauthorized, do(guarded, http.MethodGet, "/ping", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		do(guarded, http.MethodGet, "/ping", "", map[string]string{AdminTokenHeader: "wrong"}).Code)
	assert.Equal(t, http.StatusOK,
		do(guarded, http.MethodGet, "/ping", "", map[string]string{AdminTokenHeader: "s3cret"}).Code)
}

func TestTimeout(t *testing.T) {
	r := newEngine(Timeout(20 * time.Millisecond))

	w := do(r, http.MethodGet, "/slow", "", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "GATEWAY_TIMEOUT")

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", nil).Code)
}

func TestRecoveryAndLogger(t *testing.T) {
	r := newEngine(Recovery(), Logger())

	w := do(r, http.MethodGet, "/panic", "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
