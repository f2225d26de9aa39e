package gormpersistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Evan-Lab/cloud-native/internal/domain"
)

// GormEventRepository 是 EventRepository 接口的 GORM 实现
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository 创建 GormEventRepository 实例
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	if db == nil {
		panic("database connection cannot be nil for GormEventRepository")
	}
	return &GormEventRepository{db: db}
}

// SaveBatch 实现批量保存放置事件
// GORM 的 Create 方法支持传入切片进行批量插入
func (r *GormEventRepository) SaveBatch(ctx context.Context, events []domain.PlacementEvent) error {
	if len(events) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&events).Error
	if err != nil {
		return fmt.Errorf("gorm: save event batch (size %d): %w", len(events), err)
	}
	return nil
}

// CountSince 实现获取指定画布在某个时间点之后的事件数量
func (r *GormEventRepository) CountSince(ctx context.Context, canvasID string, since time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&domain.PlacementEvent{}).
		Where("canvas_id = ?", canvasID)
	if !since.IsZero() {
		query = query.Where("created_at > ?", since)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("gorm: count events for canvas %s since %v: %w", canvasID, since, err)
	}
	return count, nil
}
