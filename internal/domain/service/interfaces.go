package service

import (
	"context"
	"time"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/reference"
)

//go:generate mockery --name EntityScorer --output mocks --outpkg mocks
// EntityScorer turns the raw facts of one entity into a risk profile.
// EntityScorer 将单个实体的原始事实转换为风险画像。
type EntityScorer interface {
	// Score computes a fresh profile as of asOf. A returned error is always a
	// scoring_error and concerns this entity only.
	// Score 计算截至 asOf 的风险画像。返回的错误总是 scoring_error，且只影响该实体。
	Score(ctx context.Context, facts models.EntityFacts, asOf time.Time) (*models.EntityRiskProfile, error)

	// Tables returns the reference tables the scorer was built with.
	// Tables 返回构建评分器时使用的参考表。
	Tables() *reference.Tables
}

//go:generate mockery --name TablesProvider --output mocks --outpkg mocks
// TablesProvider hands out the current immutable table snapshot.
// TablesProvider 提供当前不可变的参考表快照。
type TablesProvider interface {
	// Current returns the active tables. The returned value must not be modified.
	// Current 返回当前生效的参考表，调用方不得修改返回值。
	Current() *reference.Tables
}

// StaticTables is a TablesProvider that never changes.
type StaticTables struct {
	tables *reference.Tables
}

// NewStaticTables wraps t as a fixed provider.
func NewStaticTables(t *reference.Tables) *StaticTables {
	return &StaticTables{tables: t}
}

func (s *StaticTables) Current() *reference.Tables {
	return s.tables
}

//go:generate mockery --name ProfilePublisher --output mocks --outpkg mocks
// ProfilePublisher pushes freshly scored profiles to a downstream consumer
// (event stream, search index).
// ProfilePublisher 将新计算的风险画像推送到下游（事件流、搜索索引）。
type ProfilePublisher interface {
	// Publish sends the profiles. Failures do not invalidate the scores.
	// Publish 发送风险画像。发送失败不影响评分结果。
	Publish(ctx context.Context, profiles []*models.EntityRiskProfile) error

	// Name identifies the sink in logs and metrics.
	// Name 在日志和指标中标识该下游。
	Name() string
}
