package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/petyard-go/internal/core/domain"
)

// CountsFunc returns the current entity counts. It is called on every
// scrape and must be safe for concurrent use.
type CountsFunc func() domain.Counts

// Collector reports entity counts at scrape time.
type Collector struct {
	counts CountsFunc
	desc   *prometheus.Desc
}

// NewCollector creates a collector backed by fn.
func NewCollector(fn CountsFunc) *Collector {
	return &Collector{
		counts: fn,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "entities"),
			"Number of stored entities by kind",
			[]string{"kind"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	n := c.counts()
	for kind, v := range map[string]int{
		"users":     n.Users,
		"pets":      n.Pets,
		"pet_yards": n.Yards,
		"tokens":    n.Tokens,
	} {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(v), kind)
	}
}

// RegisterCounts registers a Collector for fn on r.
func (r *Registry) RegisterCounts(fn CountsFunc) {
	r.registry.MustRegister(NewCollector(fn))
}
