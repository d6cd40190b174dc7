package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumenlearn/api/history"
	"lumenlearn/api/models"
	"lumenlearn/api/session"
	"lumenlearn/api/telemetry"
)

type staticResolver struct {
	profile models.VisitorProfile
}

func (s staticResolver) Resolve(ctx context.Context) models.VisitorProfile {
	return s.profile
}

func newResolvedPipeline(t *testing.T) *telemetry.Pipeline {
	t.Helper()
	p := telemetry.NewPipeline(session.Generate(), staticResolver{profile: models.VisitorProfile{
		IPAddress: "1.2.3.4",
		Geo:       models.Geolocation{CountryCode: "US", City: "Reno"},
		UA:        models.UAInfo{Browser: "Chrome", OS: "Linux", DeviceClass: "desktop"},
		Loaded:    true,
	}}, history.NewController(nil))
	p.Start(context.Background())
	require.Eventually(t, func() bool {
		_, state := p.Profile()
		return state == telemetry.StateResolved
	}, time.Second, 5*time.Millisecond)
	return p
}

func serveJSON(t *testing.T, r *gin.Engine, method, path string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func newRouter(h *VisitorHandlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/visitor/profile", h.GetProfile)
	r.GET("/api/visits", h.GetVisits)
	r.GET("/api/visits/all", h.GetAllVisits)
	r.POST("/api/visits/refresh", h.RefreshAllVisits)
	return r
}

func TestGetProfileResolved(t *testing.T) {
	p := newResolvedPipeline(t)
	r := newRouter(NewVisitorHandlers(p))

	code, body := serveJSON(t, r, http.MethodGet, "/api/visitor/profile")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "resolved", body["state"])
	assert.Equal(t, string(p.Session()), body["session"])

	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, true, profile["loaded"])
	assert.Equal(t, "1.2.3.4", profile["ipAddress"])
}

func TestGetVisitsReflectsLoggedNavigations(t *testing.T) {
	p := newResolvedPipeline(t)
	r := newRouter(NewVisitorHandlers(p))

	p.LogVisit("/pages/a")
	p.LogVisit("/pages/b")

	code, body := serveJSON(t, r, http.MethodGet, "/api/visits")
	require.Equal(t, http.StatusOK, code)

	visits := body["visits"].([]interface{})
	require.Len(t, visits, 2)
	newest := visits[0].(map[string]interface{})
	assert.Equal(t, "/pages/b", newest["pagePath"])
}

func TestAllVisitsWithoutStore(t *testing.T) {
	p := newResolvedPipeline(t)
	r := newRouter(NewVisitorHandlers(p))

	code, body := serveJSON(t, r, http.MethodGet, "/api/visits/all")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["storeReady"])
	assert.Empty(t, body["allVisits"])

	// Refresh is a no-op, not a failure.
	code, body = serveJSON(t, r, http.MethodPost, "/api/visits/refresh")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["refreshed"])
	assert.Equal(t, false, body["storeReady"])
}

func TestStatsUnavailableWithoutStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewStatsHandlers(nil)
	r := gin.New()
	r.GET("/api/stats/top-pages", h.GetTopPages)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats/top-pages", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
