// Package metrics implements the per-extension counters and latency
// recorder, with both a JSON snapshot and a Prometheus text-exposition
// rendering.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agentext"

// ringSize bounds the latency sample ring.
const ringSize = 1024

// Registry is one extension's metrics state: a Prometheus registry holding
// lazily-created per-endpoint counters plus a latency ring buffer. It is
// never shared across extensions.
type Registry struct {
	mu        sync.Mutex
	extension string
	startedAt time.Time
	running   bool

	registry *prometheus.Registry

	requestsReceived prometheus.Counter
	errors           prometheus.Counter
	rateLimited      prometheus.Counter
	authFailures     prometheus.Counter

	endpointCounters map[string]prometheus.Counter
	eventCounters    map[string]prometheus.Counter

	latency *latencyRing
}

// New builds a Registry for one extension, registering the fixed counters
// up front; endpoint and domain-event counters register lazily.
func New(extension string) *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		extension:        extension,
		startedAt:        time.Now(),
		registry:         reg,
		endpointCounters: make(map[string]prometheus.Counter),
		eventCounters:    make(map[string]prometheus.Counter),
		latency:          newLatencyRing(ringSize),
	}

	r.requestsReceived = r.newCounter("requests_received", "Total requests received.")
	r.errors = r.newCounter("errors", "Total request errors.")
	r.rateLimited = r.newCounter("rate_limited", "Total requests rejected by the rate limiter.")
	r.authFailures = r.newCounter("auth_failures", "Total authentication failures.")

	return r
}

func (r *Registry) newCounter(name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        name,
		Help:        help,
		ConstLabels: prometheus.Labels{"extension": r.extension},
	})
	r.registry.MustRegister(c)
	return c
}

// Start marks the registry's server as running, for uptime computation.
func (r *Registry) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = true
	r.startedAt = time.Now()
}

// Stop marks the server as no longer running.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
}

// IncRequestsReceived increments the requests_received counter.
func (r *Registry) IncRequestsReceived() { r.requestsReceived.Inc() }

// IncErrors increments the errors counter.
func (r *Registry) IncErrors() { r.errors.Inc() }

// IncRateLimited increments the rate_limited counter. Rate-limit rejections
// never also increment auth_failures.
func (r *Registry) IncRateLimited() { r.rateLimited.Inc() }

// IncAuthFailures increments the auth_failures counter.
func (r *Registry) IncAuthFailures() { r.authFailures.Inc() }

// IncEndpoint increments (creating lazily) the counter for an endpoint
// name, e.g. "GET /status".
func (r *Registry) IncEndpoint(endpoint string) {
	r.counterFor(&r.endpointCounters, "endpoint_requests_total", "endpoint", endpoint, "Total requests per endpoint.").Inc()
}

// IncEvent increments (creating lazily) a domain-specific event counter,
// e.g. "elements_created".
func (r *Registry) IncEvent(name string) {
	r.eventCounter(name).Inc()
}

// AddEvent increments a domain-specific event counter by n.
func (r *Registry) AddEvent(name string, n float64) {
	r.eventCounter(name).Add(n)
}

func (r *Registry) eventCounter(name string) prometheus.Counter {
	r.mu.Lock()
	c, ok := r.eventCounters[name]
	if !ok {
		c = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        "Domain event counter: " + name + ".",
			ConstLabels: prometheus.Labels{"extension": r.extension},
		})
		r.registry.MustRegister(c)
		r.eventCounters[name] = c
	}
	r.mu.Unlock()
	return c
}

func (r *Registry) counterFor(store *map[string]prometheus.Counter, metricName, labelName, labelValue, help string) prometheus.Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := (*store)[labelValue]
	if !ok {
		c = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        metricName,
			Help:        help,
			ConstLabels: prometheus.Labels{"extension": r.extension, labelName: labelValue},
		})
		r.registry.MustRegister(c)
		(*store)[labelValue] = c
	}
	return c
}

// ObserveLatency records a request's duration in milliseconds into the
// bounded ring.
func (r *Registry) ObserveLatency(ms float64) {
	r.latency.add(ms)
}

// UptimeSeconds returns the elapsed time since the server was last started.
func (r *Registry) UptimeSeconds() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Since(r.startedAt).Seconds()
}

// Running reports whether Start has been called without an intervening
// Stop.
func (r *Registry) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// LatencySummary is a point-in-time view of the latency ring.
type LatencySummary struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum_ms"`
	Mean  float64 `json:"mean_ms"`
	P50   float64 `json:"p50_ms"`
	P90   float64 `json:"p90_ms"`
	P99   float64 `json:"p99_ms"`
}

// Latency computes the current summary on demand.
func (r *Registry) Latency() LatencySummary {
	return r.latency.summary()
}

// latencyRing is a fixed-capacity circular buffer of recent latency
// samples in milliseconds.
type latencyRing struct {
	mu       sync.Mutex
	samples  []float64
	next     int
	count    int
	capacity int
	sum      float64
}

func newLatencyRing(capacity int) *latencyRing {
	return &latencyRing{samples: make([]float64, capacity), capacity: capacity}
}

func (l *latencyRing) add(v float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == l.capacity {
		l.sum -= l.samples[l.next]
	} else {
		l.count++
	}
	l.samples[l.next] = v
	l.sum += v
	l.next = (l.next + 1) % l.capacity
}

func (l *latencyRing) summary() LatencySummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := LatencySummary{Count: l.count, Sum: l.sum}
	if l.count == 0 {
		return s
	}
	s.Mean = l.sum / float64(l.count)

	sorted := make([]float64, l.count)
	copy(sorted, l.samples[:l.count])
	sort.Float64s(sorted)

	s.P50 = percentile(sorted, 0.50)
	s.P90 = percentile(sorted, 0.90)
	s.P99 = percentile(sorted, 0.99)
	return s
}

// percentile takes the nearest-rank value from an already-sorted slice.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
