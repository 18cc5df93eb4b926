package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CountersStartAtZero(t *testing.T) {
	r := New("worldbuilder")
	snap := r.Snapshot()
	assert.Equal(t, float64(0), snap["agentext_requests_received"])
	assert.Equal(t, float64(0), snap["agentext_errors"])
}

func TestRegistry_IncrementAndSnapshot(t *testing.T) {
	r := New("worldbuilder")
	r.IncRequestsReceived()
	r.IncRequestsReceived()
	r.IncErrors()
	r.IncRateLimited()
	r.IncAuthFailures()

	snap := r.Snapshot()
	assert.Equal(t, float64(2), snap["agentext_requests_received"])
	assert.Equal(t, float64(1), snap["agentext_errors"])
	assert.Equal(t, float64(1), snap["agentext_rate_limited"])
	assert.Equal(t, float64(1), snap["agentext_auth_failures"])
}

func TestRegistry_EndpointCounterLazy(t *testing.T) {
	r := New("camera")
	r.IncEndpoint("GET /status")
	r.IncEndpoint("GET /status")
	r.IncEndpoint("POST /cinematic/keyframes")

	snap := r.Snapshot()
	found := 0
	for k, v := range snap {
		if strings.Contains(k, "endpoint_requests_total") && strings.Contains(k, "GET /status") {
			assert.Equal(t, float64(2), v)
			found++
		}
	}
	assert.Equal(t, 1, found)
}

func TestRegistry_EventCounter(t *testing.T) {
	r := New("worldbuilder")
	r.IncEvent("elements_created")
	r.AddEvent("elements_created", 2)

	snap := r.Snapshot()
	assert.Equal(t, float64(3), snap["agentext_elements_created"])
}

func TestRegistry_LatencySummary(t *testing.T) {
	r := New("recorder")
	for _, v := range []float64{10, 20, 30, 40, 50} {
		r.ObserveLatency(v)
	}
	summary := r.Latency()
	assert.Equal(t, 5, summary.Count)
	assert.Equal(t, float64(150), summary.Sum)
	assert.Equal(t, float64(30), summary.Mean)
}

func TestRegistry_LatencyRingBounded(t *testing.T) {
	r := New("recorder")
	for i := 0; i < ringSize+10; i++ {
		r.ObserveLatency(1)
	}
	summary := r.Latency()
	assert.Equal(t, ringSize, summary.Count)
}

func TestRegistry_StartStopUptime(t *testing.T) {
	r := New("rtmpstreamer")
	assert.False(t, r.Running())
	r.Start()
	assert.True(t, r.Running())
	r.Stop()
	assert.False(t, r.Running())
}

func TestRegistry_TextExposition(t *testing.T) {
	r := New("srtstreamer")
	r.IncRequestsReceived()

	text, err := r.TextExposition()
	require.NoError(t, err)
	assert.Contains(t, text, "agentext_requests_received")
	assert.Contains(t, text, "extension=\"srtstreamer\"")
}
