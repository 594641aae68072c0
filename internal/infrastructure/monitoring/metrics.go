package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	EntitiesScored   *prometheus.CounterVec
	ScoreLatency     *prometheus.HistogramVec
	BatchSize        prometheus.Histogram
	BatchFailures    prometheus.Counter
	BatchLatency     prometheus.Histogram
	ParseFailures    *prometheus.CounterVec
	SnapshotLookups  *prometheus.CounterVec
	DBQueryLatency   *prometheus.HistogramVec
	ProfilePublishes *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPLatency      *prometheus.HistogramVec
}

// NewMetrics creates the Prometheus metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EntitiesScored: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridrisk_entities_scored_total",
				Help: "Total number of entity scoring attempts.",
			},
			[]string{"tier", "result"},
		),
		ScoreLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridrisk_score_latency_seconds",
				Help:    "Latency of scoring one entity.",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"result"},
		),
		BatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gridrisk_batch_size",
				Help:    "Number of entities per scoring batch.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		BatchFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gridrisk_batch_entity_failures_total",
				Help: "Entities whose score was unavailable, summed over batches.",
			},
		),
		BatchLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gridrisk_batch_latency_seconds",
				Help:    "Latency of a whole scoring batch.",
				Buckets: prometheus.DefBuckets,
			},
		),
		ParseFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridrisk_parse_failures_total",
				Help: "Total number of attributes skipped because they could not be parsed.",
			},
			[]string{"code_type"},
		),
		SnapshotLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridrisk_snapshot_lookups_total",
				Help: "Related-score snapshot lookups by cache layer.",
			},
			[]string{"layer", "hit"},
		),
		DBQueryLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridrisk_db_query_latency_seconds",
				Help:    "Latency of warehouse and profile store queries.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		ProfilePublishes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridrisk_profile_publishes_total",
				Help: "Profile batches sent to downstream sinks.",
			},
			[]string{"sink", "result"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridrisk_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"path", "method", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridrisk_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(path, method string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(path, method).Observe(duration.Seconds())
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

//Personal.AI order the ending
