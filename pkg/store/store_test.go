package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	errs "github.com/matzehuels/grapplegraph/pkg/errors"
	graphio "github.com/matzehuels/grapplegraph/pkg/io"
)

func record(key string, age time.Duration) Record {
	return Record{
		Key:         key,
		CatalogHash: "hash-" + key,
		BuildID:     "build-" + key,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(-age),
		Nodes:       1,
		Graph: graphio.Document{
			Nodes: []graphio.NodeDoc{{ID: 0, Description: key}},
		},
	}
}

// exercise runs the behavior every Store must share.
func exercise(t *testing.T, s Store) {
	ctx := context.Background()

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) || errs.GetCode(err) != errs.ErrCodeNotFound {
		t.Errorf("Load(missing) err = %v", err)
	}
	if err := s.Save(ctx, Record{}); errs.GetCode(err) != errs.ErrCodeInvalidKey {
		t.Errorf("Save without key err = %v", err)
	}

	for i, k := range []string{"old", "new", "mid"} {
		age := map[string]time.Duration{"old": 2 * time.Hour, "mid": time.Hour, "new": 0}[k]
		if err := s.Save(ctx, record(k, age)); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	got, err := s.Load(ctx, "mid")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.BuildID != "build-mid" || len(got.Graph.Nodes) != 1 || got.Graph.Nodes[0].Description != "mid" {
		t.Errorf("Load = %+v", got)
	}

	replaced := record("mid", time.Hour)
	replaced.BuildID = "rebuilt"
	if err := s.Save(ctx, replaced); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Load(ctx, "mid"); got == nil || got.BuildID != "rebuilt" {
		t.Errorf("Save should replace, got %+v", got)
	}

	list, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Key != "new" || list[1].Key != "mid" {
		t.Errorf("List = %+v", list)
	}
	for _, r := range list {
		if len(r.Graph.Nodes) != 0 {
			t.Error("List should omit graphs")
		}
	}

	if err := s.Delete(ctx, "mid"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, "mid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted record still loads: %v", err)
	}
	if err := s.Delete(ctx, "mid"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	defer s.Close(context.Background())
	exercise(t, s)
}

// TestMongoStore runs against a live server when GRAPPLEGRAPH_TEST_MONGO
// holds its URI.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("GRAPPLEGRAPH_TEST_MONGO")
	if uri == "" {
		t.Skip("GRAPPLEGRAPH_TEST_MONGO not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoOptions{URI: uri, Database: "grapplegraph_test", Collection: t.Name()})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)
	_ = s.coll.Drop(ctx)
	exercise(t, s)
}

func TestNewMongoStoreConfig(t *testing.T) {
	ctx := context.Background()
	tests := []MongoOptions{
		{Database: "db"},
		{URI: "mongodb://localhost:27017"},
	}
	for _, opts := range tests {
		if _, err := NewMongoStore(ctx, opts); errs.GetCode(err) != errs.ErrCodeInvalidConfig {
			t.Errorf("NewMongoStore(%+v) err = %v", opts, err)
		}
	}
}
