package monitoring

import (
	"github.com/aleister1102/pagecheck/internal/rslimiter"
	"github.com/prometheus/client_golang/prometheus"
)

// admissionCollector reports limiter occupancy and host memory at scrape time.
type admissionCollector struct {
	limiter *rslimiter.ResourceLimiter
	usage   func() (rslimiter.ResourceUsage, error)

	slotsInUse   *prometheus.Desc
	memUsedRatio *prometheus.Desc
	memUsedMB    *prometheus.Desc
	memTotalMB   *prometheus.Desc
}

func newAdmissionCollector(limiter *rslimiter.ResourceLimiter) *admissionCollector {
	return &admissionCollector{
		limiter: limiter,
		usage:   rslimiter.GetResourceUsage,
		slotsInUse: prometheus.NewDesc(
			"pagecheck_admission_slots_in_use",
			"Audit slots currently held in the admission limiter",
			nil, nil,
		),
		memUsedRatio: prometheus.NewDesc(
			"pagecheck_host_memory_used_ratio",
			"Used host memory as a fraction of total, as seen by the admission limiter",
			nil, nil,
		),
		memUsedMB: prometheus.NewDesc(
			"pagecheck_host_memory_used_megabytes",
			"Used host memory in megabytes",
			nil, nil,
		),
		memTotalMB: prometheus.NewDesc(
			"pagecheck_host_memory_total_megabytes",
			"Total host memory in megabytes",
			nil, nil,
		),
	}
}

func (c *admissionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.slotsInUse
	ch <- c.memUsedRatio
	ch <- c.memUsedMB
	ch <- c.memTotalMB
}

func (c *admissionCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.slotsInUse, prometheus.GaugeValue, float64(c.limiter.InFlight()))

	usage, err := c.usage()
	if err != nil {
		// Memory series are omitted for this scrape.
		return
	}
	ch <- prometheus.MustNewConstMetric(c.memUsedRatio, prometheus.GaugeValue, usage.SystemMemUsedPercent/100)
	ch <- prometheus.MustNewConstMetric(c.memUsedMB, prometheus.GaugeValue, float64(usage.SystemMemUsedMB))
	ch <- prometheus.MustNewConstMetric(c.memTotalMB, prometheus.GaugeValue, float64(usage.SystemMemTotalMB))
}

// WatchLimiter exports the limiter's slot usage and host memory readings
func (m *Metrics) WatchLimiter(limiter *rslimiter.ResourceLimiter) {
	m.registry.MustRegister(newAdmissionCollector(limiter))
}
