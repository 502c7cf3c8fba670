package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	m := NoopMatchHooks{}
	m.OnPrefilterReject()
	m.OnAlignmentSolve(true)

	b := NoopBuildHooks{}
	b.OnBuildStart(ctx, "id", 10)
	b.OnBuildComplete(ctx, "id", BuildStats{Nodes: 3}, time.Second, nil)
	b.OnResolve(ctx, true)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "graph")
	c.OnCacheSet(ctx, "graph", 1024)

	h := NoopHTTPHooks{}
	h.OnResponse(ctx, "POST", "/v1/match", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Match().(NoopMatchHooks); !ok {
		t.Error("Match() should return NoopMatchHooks by default")
	}
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Build() should return NoopBuildHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customMatch := &testMatchHooks{}
	SetMatchHooks(customMatch)
	if Match() != customMatch {
		t.Error("SetMatchHooks should set custom hooks")
	}

	customBuild := &testBuildHooks{}
	SetBuildHooks(customBuild)
	if Build() != customBuild {
		t.Error("SetBuildHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Match().(NoopMatchHooks); !ok {
		t.Error("Reset() should restore NoopMatchHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testMatchHooks{}
	SetMatchHooks(custom)
	SetMatchHooks(nil)

	if Match() != custom {
		t.Error("SetMatchHooks(nil) should be ignored")
	}
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.OnPrefilterReject()
	p.OnPrefilterReject()
	p.OnAlignmentSolve(true)
	p.OnAlignmentSolve(false)
	p.OnAlignmentSolve(false)
	p.OnResolve(ctx, true)
	p.OnBuildComplete(ctx, "id", BuildStats{Nodes: 7, Edges: 9}, time.Second, nil)
	p.OnBuildComplete(ctx, "id", BuildStats{}, time.Second, errors.New("boom"))
	p.OnCacheSet(ctx, "graph", 512)
	p.OnResponse(ctx, "POST", "/v1/match", 200, time.Millisecond)

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"prefilter", p.prefilterRejects, 2},
		{"accepted", p.solves.WithLabelValues("true"), 1},
		{"rejected", p.solves.WithLabelValues("false"), 2},
		{"created", p.resolves.WithLabelValues("created"), 1},
		{"nodes", p.graphNodes, 7},
		{"edges", p.graphEdges, 9},
		{"build ok", p.builds.WithLabelValues("ok"), 1},
		{"build error", p.builds.WithLabelValues("error"), 1},
		{"cache bytes", p.cacheBytes.WithLabelValues("graph"), 512},
		{"requests", p.requests.WithLabelValues("POST", "/v1/match", "200"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.c); got != tt.want {
				t.Errorf("got %g, want %g", got, tt.want)
			}
		})
	}

	if n, err := testutil.GatherAndCount(reg); err != nil || n == 0 {
		t.Errorf("GatherAndCount = %d, %v", n, err)
	}
}

// Test implementations
type testMatchHooks struct{ NoopMatchHooks }
type testBuildHooks struct{ NoopBuildHooks }
type testCacheHooks struct{ NoopCacheHooks }
