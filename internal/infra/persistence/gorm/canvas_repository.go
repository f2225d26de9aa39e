package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Evan-Lab/cloud-native/internal/domain"
	"github.com/Evan-Lab/cloud-native/internal/repository"
)

// GormCanvasRepository 是 CanvasRepository 接口的 GORM 实现
type GormCanvasRepository struct {
	db *gorm.DB
}

// NewGormCanvasRepository 创建 GormCanvasRepository 实例
func NewGormCanvasRepository(db *gorm.DB) *GormCanvasRepository {
	if db == nil {
		panic("database connection cannot be nil for GormCanvasRepository")
	}
	return &GormCanvasRepository{db: db}
}

// FindByID 实现根据画布 ID 查找画布
func (r *GormCanvasRepository) FindByID(ctx context.Context, id string) (*domain.Canvas, error) {
	var canvas domain.Canvas
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&canvas).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCanvasNotFound
		}
		return nil, fmt.Errorf("gorm: find canvas by id '%s': %w", id, err)
	}
	return &canvas, nil
}

// Save 实现保存画布信息
func (r *GormCanvasRepository) Save(ctx context.Context, canvas *domain.Canvas) error {
	err := r.db.WithContext(ctx).Save(canvas).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save canvas (id: %s): %w", canvas.ID, err)
	}
	return nil
}

// UpdateStatus 实现更新画布会话状态
func (r *GormCanvasRepository) UpdateStatus(ctx context.Context, id string, status domain.SessionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Canvas{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("gorm: update canvas %s status to %s: %w", id, status, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrCanvasNotFound
	}
	return nil
}

// FindByStatus 实现查询指定状态的画布列表
func (r *GormCanvasRepository) FindByStatus(ctx context.Context, status domain.SessionStatus) ([]domain.Canvas, error) {
	var canvases []domain.Canvas
	err := r.db.WithContext(ctx).Where("status = ?", status).Find(&canvases).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find canvases by status %s: %w", status, err)
	}
	return canvases, nil
}
