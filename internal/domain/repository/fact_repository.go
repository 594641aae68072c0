// Package repository 定义领域仓储接口
// 事实仓储负责从数仓读取实体的原始事实（属性、事件、地址、关系）
package repository

import (
	"context"

	"github.com/turtacn/gridrisk/internal/domain/models"
)

// FactRepository 定义事实仓储接口
// 实现类：internal/infrastructure/persistence/postgres/fact_repository.go
//
//go:generate mockery --name FactRepository --output ../repository/mocks --filename fact_repository.go
type FactRepository interface {
	// LoadFacts 批量加载实体事实
	// 参数：
	//   - ctx: 请求上下文，用于超时控制和链路追踪
	//   - entityIDs: 实体ID列表
	// 返回：
	//   - map: 以实体ID为键；不存在的实体不出现在结果中
	//   - error: 查询失败时返回错误
	LoadFacts(ctx context.Context, entityIDs []string) (map[string]*models.EntityFacts, error)

	// ListEntityIDs 按升序分页列出实体ID
	// 参数：
	//   - afterID: 上一页最后一个ID，首页传空字符串
	//   - limit: 每页数量
	ListEntityIDs(ctx context.Context, afterID string, limit int) ([]string, error)
}
