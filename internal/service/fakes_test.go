package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db/dbtest"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type sentEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []sentEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, _ := event.(map[string]any)
	p.events = append(p.events, sentEvent{Topic: topic, Key: key, Event: m})
	return p.err
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

// fakeCache round-trips values through JSON like the redis cache does.
type fakeCache struct {
	mu            sync.Mutex
	data          map[string][]byte
	hits          int
	invalidations int
	getErr        error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = map[string][]byte{}
	c.invalidations++
	return nil
}

type fakeSearcher struct {
	total int64
	items []models.ProductListing
	err   error
	calls int
}

func (s *fakeSearcher) Search(_ context.Context, _ string, _, _ int) (int64, []models.ProductListing, error) {
	s.calls++
	return s.total, s.items, s.err
}

var errBoom = errors.New("boom")

func newRepo(t *testing.T) (*repo.GormRepo, *gorm.DB) {
	t.Helper()
	gdb := dbtest.New(t)
	return &repo.GormRepo{DB: gdb}, gdb
}

// raceInsert runs stmt on the same connection right before the first insert
// into table, as if a concurrent request had written the row first.
func raceInsert(t *testing.T, gdb *gorm.DB, table, stmt string, args ...any) *bool {
	t.Helper()
	fired := false
	err := gdb.Callback().Create().Before("gorm:create").Register("test:race_"+table, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		if _, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context, stmt, args...); err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)
	return &fired
}
