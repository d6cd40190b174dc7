package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lumenlearn/api/store"
)

// StatsHandlers serves aggregate queries over the visit store. With no
// store configured every endpoint answers 503 with storeReady=false.
type StatsHandlers struct {
	Store store.VisitorStore
}

func NewStatsHandlers(s store.VisitorStore) *StatsHandlers {
	return &StatsHandlers{Store: s}
}

// parseTimeRange reads optional RFC3339 start/end query parameters,
// defaulting to the last 7 days. It writes the error response itself and
// reports ok=false when a parameter is malformed.
func parseTimeRange(c *gin.Context) (start, end time.Time, ok bool) {
	start = time.Now().UTC().Add(-7 * 24 * time.Hour)
	end = time.Now().UTC()

	var err error
	if v := c.Query("start"); v != "" {
		start, err = time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'start' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return start, end, false
		}
	}
	if v := c.Query("end"); v != "" {
		end, err = time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'end' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return start, end, false
		}
	}
	return start, end, true
}

func (h *StatsHandlers) requireStore(c *gin.Context) bool {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No visit store configured", "storeReady": false})
		return false
	}
	return true
}

func (h *StatsHandlers) GetTopPages(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	var limit uint64 = 10
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil || parsed == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Store.TopPages(ctx, start, end, limit)
	if err != nil {
		log.Printf("Error getting top pages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top pages"})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *StatsHandlers) GetVisitCountsOverTime(c *gin.Context) {
	h.bucketedCount(c, func(ctx context.Context, interval string, start, end time.Time) (interface{}, error) {
		return h.Store.VisitCountsOverTime(ctx, interval, start, end)
	})
}

func (h *StatsHandlers) GetUniqueSessionsOverTime(c *gin.Context) {
	h.bucketedCount(c, func(ctx context.Context, interval string, start, end time.Time) (interface{}, error) {
		return h.Store.UniqueSessionsOverTime(ctx, interval, start, end)
	})
}

func (h *StatsHandlers) bucketedCount(c *gin.Context, query func(context.Context, string, time.Time, time.Time) (interface{}, error)) {
	if !h.requireStore(c) {
		return
	}

	interval := c.Query("interval")
	if interval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter is required (e.g., 'Day', 'Hour')"})
		return
	}

	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := query(ctx, interval, start, end)
	if err != nil {
		log.Printf("Error getting visit statistics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve visit statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}
