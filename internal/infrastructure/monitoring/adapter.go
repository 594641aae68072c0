// Package monitoring provides adapters to connect the domain's metrics interface with a concrete implementation like Prometheus.
package monitoring

import (
	"strconv"
	"time"

	"github.com/turtacn/gridrisk/internal/domain/service"
)

// MetricsAdapter implements the domain's service.Metrics interface, sending metrics to a Prometheus backend.
// MetricsAdapter 实现了域的 service.Metrics 接口，将指标发送到 Prometheus 后端。
type MetricsAdapter struct {
	metrics *Metrics
}

// NewMetricsAdapter creates a new adapter that wraps a concrete Prometheus Metrics object.
// NewMetricsAdapter 创建一个包装具体 Prometheus Metrics 对象的新适配器。
func NewMetricsAdapter(metrics *Metrics) service.Metrics {
	return &MetricsAdapter{metrics: metrics}
}

func (a *MetricsAdapter) RecordEntityScored(tier string, success bool, duration time.Duration) {
	if tier == "" {
		tier = "unavailable"
	}
	result := resultLabel(success)
	a.metrics.EntitiesScored.WithLabelValues(tier, result).Inc()
	a.metrics.ScoreLatency.WithLabelValues(result).Observe(duration.Seconds())
}

func (a *MetricsAdapter) RecordParseFailure(codeType string) {
	a.metrics.ParseFailures.WithLabelValues(codeType).Inc()
}

func (a *MetricsAdapter) RecordBatch(size, failed int, duration time.Duration) {
	a.metrics.BatchSize.Observe(float64(size))
	a.metrics.BatchFailures.Add(float64(failed))
	a.metrics.BatchLatency.Observe(duration.Seconds())
}

func (a *MetricsAdapter) RecordSnapshotLookup(layer string, hit bool) {
	a.metrics.SnapshotLookups.WithLabelValues(layer, strconv.FormatBool(hit)).Inc()
}

func (a *MetricsAdapter) RecordDBQuery(operation string, duration time.Duration) {
	a.metrics.DBQueryLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (a *MetricsAdapter) RecordPublish(sink string, success bool) {
	a.metrics.ProfilePublishes.WithLabelValues(sink, resultLabel(success)).Inc()
}

//Personal.AI order the ending
