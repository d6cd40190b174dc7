// Package history keeps the session's visit log: a bounded in-memory list
// that is always authoritative, with best-effort write-through to an
// optional remote store.
package history

import (
	"context"
	"log"
	"sync"
	"time"

	"lumenlearn/api/models"
	"lumenlearn/api/store"
)

const (
	// VisitCap bounds the session's own in-memory visit list.
	VisitCap = 200
	// AllVisitsCap bounds the cross-session snapshot fetched from the store.
	AllVisitsCap = 500

	writeTimeout = 15 * time.Second
)

// Controller owns both visit lists. A nil store puts it in no-op mode:
// AddVisit still updates local state and RefreshAllVisits does nothing.
type Controller struct {
	visitStore store.VisitorStore

	mu        sync.Mutex
	visits    []models.VisitRecord
	allVisits []models.VisitRecord
}

func NewController(s store.VisitorStore) *Controller {
	return &Controller{visitStore: s}
}

// StoreReady distinguishes "no history because no store" from "no history
// yet".
func (c *Controller) StoreReady() bool {
	return c.visitStore != nil
}

// AddVisit prepends the record locally (evicting past VisitCap) and then
// kicks off the remote write in the background. The local update always
// happens first and never waits on the network; a failed remote write is
// logged and dropped — losing the remote copy must never affect the page.
func (c *Controller) AddVisit(record models.VisitRecord) {
	c.mu.Lock()
	c.visits = append([]models.VisitRecord{record}, c.visits...)
	if len(c.visits) > VisitCap {
		c.visits = c.visits[:VisitCap]
	}
	c.mu.Unlock()

	if c.visitStore == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := c.visitStore.Insert(ctx, record); err != nil {
			log.Printf("Best-effort visit write failed (event %s): %v", record.EventID, err)
		}
	}()
}

// RefreshAllVisits replaces the cross-session snapshot with up to
// AllVisitsCap records, newest-first. On failure the previous snapshot is
// left untouched and the error is returned for the caller to log or drop.
// This is a point-in-time read: new local visits do not appear in it until
// the next explicit refresh.
func (c *Controller) RefreshAllVisits(ctx context.Context) error {
	if c.visitStore == nil {
		return nil
	}

	records, err := c.visitStore.RecentVisits(ctx, AllVisitsCap)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.allVisits = records
	c.mu.Unlock()
	return nil
}

// Visits returns a copy of the session's own visit list, newest-first.
func (c *Controller) Visits() []models.VisitRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.VisitRecord, len(c.visits))
	copy(out, c.visits)
	return out
}

// AllVisits returns a copy of the cross-session snapshot.
func (c *Controller) AllVisits() []models.VisitRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.VisitRecord, len(c.allVisits))
	copy(out, c.allVisits)
	return out
}
