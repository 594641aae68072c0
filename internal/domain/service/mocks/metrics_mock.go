package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordEntityScored(tier string, success bool, duration time.Duration) {
	m.Called(tier, success, duration)
}

func (m *MockMetrics) RecordParseFailure(codeType string) {
	m.Called(codeType)
}

func (m *MockMetrics) RecordBatch(size, failed int, duration time.Duration) {
	m.Called(size, failed, duration)
}

func (m *MockMetrics) RecordSnapshotLookup(layer string, hit bool) {
	m.Called(layer, hit)
}

func (m *MockMetrics) RecordDBQuery(operation string, duration time.Duration) {
	m.Called(operation, duration)
}

func (m *MockMetrics) RecordPublish(sink string, success bool) {
	m.Called(sink, success)
}
