package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// GaugeFunc supplies point-in-time values (online sessions, waiting, rooms) at scrape time.
type GaugeFunc func() map[string]int

// PrometheusHandler exposes Metrics in Prometheus' text exposition format.
//
// All counters are exported as one metric with an `event` label; gauges, if any,
// as one metric with a `name` label.
func PrometheusHandler(m *Metrics, gauges GaugeFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			http.Error(w, "metrics not configured", http.StatusInternalServerError)
			return
		}

		esc := strings.NewReplacer("\\", "\\\\", "\"", "\\\"")
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		snap := m.Snapshot()
		_, _ = fmt.Fprintln(w, "# HELP strangerlink_events_total Internal event counters.")
		_, _ = fmt.Fprintln(w, "# TYPE strangerlink_events_total counter")
		for _, k := range sortedKeys(snap) {
			_, _ = fmt.Fprintf(w, "strangerlink_events_total{event=\"%s\"} %d\n", esc.Replace(k), snap[k])
		}

		if gauges == nil {
			return
		}
		g := gauges()
		_, _ = fmt.Fprintln(w, "# HELP strangerlink_state Current matchmaking state sizes.")
		_, _ = fmt.Fprintln(w, "# TYPE strangerlink_state gauge")
		for _, k := range sortedKeys(g) {
			_, _ = fmt.Fprintf(w, "strangerlink_state{name=\"%s\"} %d\n", esc.Replace(k), g[k])
		}
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
