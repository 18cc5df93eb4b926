package metrics

import (
	"bytes"
	"fmt"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Snapshot returns the flat JSON view of the registry: every counter by
// name, uptime, server_running, and the latency summary.
func (r *Registry) Snapshot() map[string]any {
	out := make(map[string]any)

	for name, value := range r.counterValues() {
		out[name] = value
	}

	out["uptime_seconds"] = r.UptimeSeconds()
	out["server_running"] = r.Running()

	lat := r.Latency()
	out["latency"] = map[string]any{
		"count":   lat.Count,
		"sum_ms":  lat.Sum,
		"mean_ms": lat.Mean,
		"p50_ms":  lat.P50,
		"p90_ms":  lat.P90,
		"p99_ms":  lat.P99,
	}

	return out
}

// counterValues gathers every registered counter's current value keyed by
// its flattened metric name (endpoint counters get a
// "<name>{<label>=<value>}" style key so they remain distinguishable; event
// counters carry no extra label and keep their plain name).
func (r *Registry) counterValues() map[string]float64 {
	families, err := r.registry.Gather()
	if err != nil {
		return nil
	}

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := flattenName(mf.GetName(), m)
			values[name] = m.GetCounter().GetValue()
		}
	}
	return values
}

// flattenName strips the fixed "extension" label (implicit per-registry)
// and, for labeled endpoint counters, appends the remaining label
// value to the metric name so keys stay unique and stable in JSON.
func flattenName(name string, m *dto.Metric) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == "extension" {
			continue
		}
		return fmt.Sprintf("%s{%s=%q}", name, lp.GetName(), lp.GetValue())
	}
	return name
}

// TextExposition renders the registry in Prometheus text-exposition
// format, the body served at /metrics.prom.
func (r *Registry) TextExposition() (string, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
