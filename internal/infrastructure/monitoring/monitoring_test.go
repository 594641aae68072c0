package monitoring

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/pkg/logger"
)

func TestMetricsAdapter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	a := NewMetricsAdapter(m)

	a.RecordEntityScored("Critical", true, time.Millisecond)
	a.RecordEntityScored("", false, time.Millisecond)
	a.RecordParseFailure("PTY")
	a.RecordBatch(10, 2, time.Second)
	a.RecordSnapshotLookup("l1", true)
	a.RecordPublish("kafka", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EntitiesScored.WithLabelValues("Critical", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EntitiesScored.WithLabelValues("unavailable", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseFailures.WithLabelValues("PTY")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BatchFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotLookups.WithLabelValues("l1", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProfilePublishes.WithLabelValues("kafka", "failure")))
}

func TestNewZapLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridrisk.log")
	log, err := NewZapLogger(&config.LogConfig{Level: "debug", Format: "json", OutputPath: path})
	require.NoError(t, err)

	log.WithComponent("test").Info(context.Background(), "scored", logger.Fields{"entity_id": "E-1"})

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"entity_id":"E-1"`)
	assert.Contains(t, string(raw), `"component":"test"`)
}

func TestNewZapLogger_BadPath(t *testing.T) {
	_, err := NewZapLogger(&config.LogConfig{Level: "info", OutputPath: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestZapLogger_Fields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewZapLoggerFrom(zap.New(core))

	log.WithFields(logger.Fields{"batch_id": "b-1"}).Warn(context.Background(), "slow batch", logger.Fields{"entities": 3})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "slow batch", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "b-1", ctx["batch_id"])
	assert.EqualValues(t, 3, ctx["entities"])
}

func TestTracingManager_Disabled(t *testing.T) {
	tm, err := NewTracingManager(&config.Config{}, logger.NewNoopLogger())
	require.NoError(t, err)
	assert.NoError(t, tm.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(1.5).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestServiceResource(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Environment = "staging"
	cfg.Scoring.TablesPath = "configs/scoring_tables.yaml"

	res, err := serviceResource(cfg)
	require.NoError(t, err)

	name, ok := res.Set().Value(attribute.Key("service.name"))
	require.True(t, ok)
	assert.Equal(t, defaultServiceName, name.AsString())

	env, ok := res.Set().Value(attribute.Key("deployment.environment"))
	require.True(t, ok)
	assert.Equal(t, "staging", env.AsString())

	cfg.Tracing.ServiceName = "gridrisk-worker"
	assert.Equal(t, "gridrisk-worker", serviceName(cfg))
}
