package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface on top of Prometheus
// collectors.
type Prometheus struct {
	prefilterRejects prometheus.Counter
	solves           *prometheus.CounterVec
	builds           *prometheus.CounterVec
	buildDuration    prometheus.Histogram
	graphNodes       prometheus.Gauge
	graphEdges       prometheus.Gauge
	resolves         *prometheus.CounterVec
	cacheEvents      *prometheus.CounterVec
	cacheBytes       *prometheus.CounterVec
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		prefilterRejects: f.NewCounter(prometheus.CounterOpts{
			Name: "grapplegraph_match_prefilter_rejects_total",
			Help: "Pose pairs rejected by head distance before alignment",
		}),
		solves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "grapplegraph_match_alignment_solves_total",
			Help: "Rigid alignment attempts by outcome",
		}, []string{"accepted"}),
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "grapplegraph_builds_total",
			Help: "Graph builds by outcome",
		}, []string{"status"}),
		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "grapplegraph_build_duration_seconds",
			Help:    "Time to build a move graph",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60},
		}),
		graphNodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "grapplegraph_graph_nodes",
			Help: "Nodes in the most recently built graph",
		}),
		graphEdges: f.NewGauge(prometheus.GaugeOpts{
			Name: "grapplegraph_graph_edges",
			Help: "Edges in the most recently built graph",
		}),
		resolves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "grapplegraph_resolves_total",
			Help: "Find-or-insert calls by result",
		}, []string{"result"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "grapplegraph_cache_events_total",
			Help: "Cache lookups and writes",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "grapplegraph_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}, []string{"key_type"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "grapplegraph_http_requests_total",
			Help: "Served API requests",
		}, []string{"method", "route", "code"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grapplegraph_http_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (p *Prometheus) OnPrefilterReject() { p.prefilterRejects.Inc() }

func (p *Prometheus) OnAlignmentSolve(accepted bool) {
	p.solves.WithLabelValues(strconv.FormatBool(accepted)).Inc()
}

func (p *Prometheus) OnBuildStart(context.Context, string, int) {}

func (p *Prometheus) OnBuildComplete(_ context.Context, _ string, stats BuildStats, d time.Duration, err error) {
	if err != nil {
		p.builds.WithLabelValues("error").Inc()
		return
	}
	p.builds.WithLabelValues("ok").Inc()
	p.buildDuration.Observe(d.Seconds())
	p.graphNodes.Set(float64(stats.Nodes))
	p.graphEdges.Set(float64(stats.Edges))
}

func (p *Prometheus) OnResolve(_ context.Context, created bool) {
	if created {
		p.resolves.WithLabelValues("created").Inc()
	} else {
		p.resolves.WithLabelValues("matched").Inc()
	}
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Register installs p as the match, build, cache and HTTP hooks.
func (p *Prometheus) Register() {
	SetMatchHooks(p)
	SetBuildHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}
