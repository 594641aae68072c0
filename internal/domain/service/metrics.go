// Package service implements the entity scoring domain: attribute parsing,
// PEP classification, event, geography and relationship sub-scores, and the
// composite scorer that ties them together.
package service

import (
	"time"
)

// Metrics defines the interface for collecting scoring metrics.
// This abstraction keeps the domain independent of the monitoring implementation (e.g., Prometheus).
// Metrics 定义了收集评分指标的接口。
// 这种抽象使领域层独立于具体的监控实现（例如 Prometheus）。
type Metrics interface {
	// RecordEntityScored records one entity outcome; tier is empty for failures.
	// RecordEntityScored 记录单个实体的评分结果；失败时 tier 为空。
	RecordEntityScored(tier string, success bool, duration time.Duration)

	// RecordParseFailure records an attribute that could not be parsed.
	// RecordParseFailure 记录无法解析的属性。
	RecordParseFailure(codeType string)

	// RecordBatch records the size, failure count and duration of a scoring batch.
	// RecordBatch 记录评分批次的大小、失败数量和耗时。
	RecordBatch(size, failed int, duration time.Duration)

	// RecordSnapshotLookup records a related-score snapshot hit or miss per cache layer.
	// RecordSnapshotLookup 记录每个缓存层的关联评分快照命中或未命中。
	RecordSnapshotLookup(layer string, hit bool)

	// RecordDBQuery records the duration of a database query.
	// RecordDBQuery 记录数据库查询的持续时间。
	RecordDBQuery(operation string, duration time.Duration)

	// RecordPublish records a profile publication to a downstream sink.
	// RecordPublish 记录向下游发布风险画像的结果。
	RecordPublish(sink string, success bool)
}

// NoopMetrics discards every observation.
type NoopMetrics struct{}

func (NoopMetrics) RecordEntityScored(string, bool, time.Duration) {}
func (NoopMetrics) RecordParseFailure(string)                      {}
func (NoopMetrics) RecordBatch(int, int, time.Duration)            {}
func (NoopMetrics) RecordSnapshotLookup(string, bool)              {}
func (NoopMetrics) RecordDBQuery(string, time.Duration)            {}
func (NoopMetrics) RecordPublish(string, bool)                     {}
