package repository

import (
	"context"
	"time"

	"github.com/Evan-Lab/cloud-native/internal/domain"
)

// EventRepository 定义了已接受放置事件的持久化操作。
// 事件日志是画布状态的来源；GridState 只是它的压缩投影。
type EventRepository interface {
	// SaveBatch 批量保存放置事件到持久化存储。
	SaveBatch(ctx context.Context, events []domain.PlacementEvent) error

	// CountSince 获取指定画布在某个时间点之后的事件数量。
	// 用于判断是否需要生成快照。
	CountSince(ctx context.Context, canvasID string, since time.Time) (int64, error)
}
