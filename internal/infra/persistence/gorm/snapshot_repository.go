package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Evan-Lab/cloud-native/internal/domain"
	"github.com/Evan-Lab/cloud-native/internal/repository"
)

// GormSnapshotRepository 是 SnapshotRepository 接口的 GORM 实现
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository 创建 GormSnapshotRepository 实例
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	if db == nil {
		panic("database connection cannot be nil for GormSnapshotRepository")
	}
	return &GormSnapshotRepository{db: db}
}

// GetLatest 实现获取指定画布的最新快照
func (r *GormSnapshotRepository) GetLatest(ctx context.Context, canvasID string) (*domain.Snapshot, error) {
	var snapshot domain.Snapshot
	err := r.db.WithContext(ctx).
		Where("canvas_id = ?", canvasID).
		Order("created_at DESC").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("gorm: get latest snapshot for canvas %s: %w", canvasID, err)
	}
	return &snapshot, nil
}

// Save 实现保存快照记录
func (r *GormSnapshotRepository) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	if err := r.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return fmt.Errorf("gorm: save snapshot for canvas %s: %w", snapshot.CanvasID, err)
	}
	return nil
}
