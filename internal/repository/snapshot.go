package repository

import (
	"context"

	"github.com/Evan-Lab/cloud-native/internal/domain"
)

// SnapshotRepository 定义了快照在持久化存储中的操作。
type SnapshotRepository interface {
	// GetLatest 获取指定画布的最新快照。
	// 没有快照时返回 ErrSnapshotNotFound。
	GetLatest(ctx context.Context, canvasID string) (*domain.Snapshot, error)

	// Save 保存快照记录。
	Save(ctx context.Context, snapshot *domain.Snapshot) error
}
