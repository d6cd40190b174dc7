package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(opts RateLimitOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(opts))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doGet(r *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitAllowsThenRejectsSameClient(t *testing.T) {
	r := newLimitedRouter(RateLimitOptions{RPS: 0.01, Burst: 2})

	assert.Equal(t, http.StatusOK, doGet(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, doGet(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "10.0.0.1:1234"))
}

func TestRateLimitIsPerClient(t *testing.T) {
	r := newLimitedRouter(RateLimitOptions{RPS: 0.01, Burst: 1})

	assert.Equal(t, http.StatusOK, doGet(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "10.0.0.1:1234"))

	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, doGet(r, "10.0.0.2:1234"))
}
