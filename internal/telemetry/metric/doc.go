// Package metric provides Prometheus metrics for PetYard.
//
//   - prometheus.go: registry, typed recording helpers and the HTTP handler
//   - collector.go: scrape-time collector for entity counts
//
// Metrics are exposed at /metrics in Prometheus text format.
package metric
