package repository

import (
	"context"

	"github.com/Evan-Lab/cloud-native/internal/domain"
)

// CanvasRepository 定义了画布元数据的存储和检索操作。
type CanvasRepository interface {
	// FindByID 根据画布 ID 查找画布。
	// 如果画布不存在，返回 ErrCanvasNotFound。
	FindByID(ctx context.Context, id string) (*domain.Canvas, error)

	// Save 保存画布信息。
	Save(ctx context.Context, canvas *domain.Canvas) error

	// UpdateStatus 更新画布的会话状态。
	UpdateStatus(ctx context.Context, id string, status domain.SessionStatus) error

	// FindByStatus 查询处于指定状态的画布列表。
	// 主要用于快照任务查找当前活跃的画布。
	FindByStatus(ctx context.Context, status domain.SessionStatus) ([]domain.Canvas, error)
}
