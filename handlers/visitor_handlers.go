package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lumenlearn/api/telemetry"
)

// VisitorHandlers exposes the pipeline's profile and history to the
// surrounding application layer.
type VisitorHandlers struct {
	Pipeline *telemetry.Pipeline
}

func NewVisitorHandlers(p *telemetry.Pipeline) *VisitorHandlers {
	return &VisitorHandlers{Pipeline: p}
}

// GetProfile returns the current visitor profile and its resolution state.
// Before resolution completes the profile is empty with loaded=false;
// clients are expected to poll or come back, never to block.
func (h *VisitorHandlers) GetProfile(c *gin.Context) {
	profile, state := h.Pipeline.Profile()
	c.JSON(http.StatusOK, gin.H{
		"session": h.Pipeline.Session(),
		"state":   state.String(),
		"profile": profile,
	})
}

// GetVisits returns the current session's own visit list, newest-first.
func (h *VisitorHandlers) GetVisits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"session": h.Pipeline.Session(),
		"visits":  h.Pipeline.History.Visits(),
	})
}

// GetAllVisits returns the cross-session point-in-time snapshot.
func (h *VisitorHandlers) GetAllVisits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"storeReady": h.Pipeline.History.StoreReady(),
		"allVisits":  h.Pipeline.History.AllVisits(),
	})
}

// RefreshAllVisits re-reads the cross-session snapshot from the store.
// Refresh only ever happens on this explicit request — the snapshot is
// deliberately not kept live. A failed refresh keeps the previous snapshot
// and is reported, not raised.
func (h *VisitorHandlers) RefreshAllVisits(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	refreshed := true
	if err := h.Pipeline.History.RefreshAllVisits(ctx); err != nil {
		log.Printf("Visit history refresh failed, serving previous snapshot: %v", err)
		refreshed = false
	}

	c.JSON(http.StatusOK, gin.H{
		"refreshed":  refreshed,
		"storeReady": h.Pipeline.History.StoreReady(),
		"allVisits":  h.Pipeline.History.AllVisits(),
	})
}
