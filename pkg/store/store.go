// Package store persists built move graphs.
//
// A [Record] holds a serialized graph together with the catalog hash and
// build options it came from. Records are addressed by the build cache key,
// so the same key finds a graph in the cache and in the store.
//
// Two implementations exist: [MongoStore] for deployments and [Memory]
// for tests and single-process use.
package store

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/grapplegraph/pkg/cache"
	errs "github.com/matzehuels/grapplegraph/pkg/errors"
	graphio "github.com/matzehuels/grapplegraph/pkg/io"
)

// ErrNotFound is returned when no record has the requested key.
var ErrNotFound = errors.New("not found")

// Record is one stored graph.
type Record struct {
	Key         string             `json:"key" bson:"_id"`
	CatalogHash string             `json:"catalogHash" bson:"catalogHash"`
	BuildID     string             `json:"buildId" bson:"buildId"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	Options     cache.BuildKeyOpts `json:"options" bson:"options"`
	Nodes       int                `json:"nodes" bson:"nodes"`
	Edges       int                `json:"edges" bson:"edges"`
	Graph       graphio.Document   `json:"graph" bson:"graph"`
}

// Store saves and loads records.
type Store interface {
	// Save inserts rec or replaces the record with the same key.
	Save(ctx context.Context, rec Record) error

	// Load returns the record stored under key. A missing key yields an
	// error matching ErrNotFound and carrying errors.ErrCodeNotFound.
	Load(ctx context.Context, key string) (*Record, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns up to limit records, newest first, without graphs.
	List(ctx context.Context, limit int) ([]Record, error)

	Close(ctx context.Context) error
}

func notFound(key string) error {
	return errs.Wrap(errs.ErrCodeNotFound, ErrNotFound, "graph %s", key)
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Save(_ context.Context, rec Record) error {
	if rec.Key == "" {
		return errs.New(errs.ErrCodeInvalidKey, "record key is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Key] = rec
	return nil
}

func (m *Memory) Load(_ context.Context, key string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, notFound(key)
	}
	return &rec, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

func (m *Memory) List(_ context.Context, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		rec.Graph = graphio.Document{}
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close(context.Context) error { return nil }

var _ Store = (*Memory)(nil)
