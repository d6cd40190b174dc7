package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumenlearn/api/models"
)

// fakeStore is an in-memory VisitorStore with switchable failure modes.
type fakeStore struct {
	mu          sync.Mutex
	inserted    []models.VisitRecord
	failInsert  bool
	failQuery   bool
	queryResult []models.VisitRecord
}

func (f *fakeStore) Insert(ctx context.Context, record models.VisitRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return errors.New("store down")
	}
	f.inserted = append(f.inserted, record)
	return nil
}

func (f *fakeStore) RecentVisits(ctx context.Context, limit int) ([]models.VisitRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failQuery {
		return nil, errors.New("store down")
	}
	if len(f.queryResult) > limit {
		return f.queryResult[:limit], nil
	}
	return f.queryResult, nil
}

func (f *fakeStore) TopPages(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPageResult, error) {
	return nil, nil
}

func (f *fakeStore) VisitCountsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.VisitCountByTime, error) {
	return nil, nil
}

func (f *fakeStore) UniqueSessionsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.VisitCountByTime, error) {
	return nil, nil
}

func (f *fakeStore) insertedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func visit(n int) models.VisitRecord {
	return models.VisitRecord{
		EventID:   fmt.Sprintf("evt-%d", n),
		SessionID: "LL-TEST",
		PagePath:  fmt.Sprintf("/page/%d", n),
		Timestamp: time.Now().UTC(),
	}
}

func TestAddVisitKeepsNewestFirstAndBounded(t *testing.T) {
	c := NewController(nil)

	for i := 0; i < VisitCap+50; i++ {
		c.AddVisit(visit(i))
	}

	visits := c.Visits()
	require.Len(t, visits, VisitCap)
	assert.Equal(t, fmt.Sprintf("/page/%d", VisitCap+49), visits[0].PagePath)
	assert.Equal(t, "/page/50", visits[VisitCap-1].PagePath)
}

func TestAddVisitWritesThroughToStore(t *testing.T) {
	fs := &fakeStore{}
	c := NewController(fs)

	c.AddVisit(visit(1))
	c.AddVisit(visit(2))

	// Local state is updated synchronously.
	require.Len(t, c.Visits(), 2)

	// The remote writes are fire-and-forget; wait for them to land.
	assert.Eventually(t, func() bool { return fs.insertedCount() == 2 },
		time.Second, 10*time.Millisecond)
}

func TestAddVisitSwallowsStoreFailure(t *testing.T) {
	fs := &fakeStore{failInsert: true}
	c := NewController(fs)

	for i := 0; i < 5; i++ {
		c.AddVisit(visit(i))
	}

	// Local list is unaffected by the failing remote writes.
	assert.Len(t, c.Visits(), 5)
	assert.Equal(t, 0, fs.insertedCount())
}

func TestNoStoreMode(t *testing.T) {
	c := NewController(nil)

	assert.False(t, c.StoreReady())
	require.NoError(t, c.RefreshAllVisits(context.Background()))
	assert.Empty(t, c.AllVisits())

	c.AddVisit(visit(1))
	assert.Len(t, c.Visits(), 1)
}

func TestRefreshAllVisitsReplacesSnapshot(t *testing.T) {
	fs := &fakeStore{queryResult: []models.VisitRecord{visit(3), visit(2), visit(1)}}
	c := NewController(fs)

	require.True(t, c.StoreReady())
	require.NoError(t, c.RefreshAllVisits(context.Background()))
	assert.Len(t, c.AllVisits(), 3)
}

func TestRefreshAllVisitsKeepsSnapshotOnFailure(t *testing.T) {
	fs := &fakeStore{queryResult: []models.VisitRecord{visit(1)}}
	c := NewController(fs)

	require.NoError(t, c.RefreshAllVisits(context.Background()))
	require.Len(t, c.AllVisits(), 1)

	fs.mu.Lock()
	fs.failQuery = true
	fs.mu.Unlock()

	require.Error(t, c.RefreshAllVisits(context.Background()))
	// Previous snapshot survives a failed refresh.
	assert.Len(t, c.AllVisits(), 1)
}

func TestSnapshotIsPointInTime(t *testing.T) {
	fs := &fakeStore{}
	c := NewController(fs)

	require.NoError(t, c.RefreshAllVisits(context.Background()))
	c.AddVisit(visit(1))

	// A new local visit does not show up in the all-visits snapshot until
	// the next explicit refresh.
	assert.Empty(t, c.AllVisits())
}
