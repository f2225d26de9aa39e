package repository

import (
	"context"
	"time"

	"github.com/Evan-Lab/cloud-native/internal/domain"
)

// StateRepository 定义了画布实时状态相关的操作，由 Redis 实现。
type StateRepository interface {
	// === Grid State ===

	// GetGridState 获取指定画布当前的完整状态。
	GetGridState(ctx context.Context, canvasID string) (domain.GridState, error)

	// ApplyEvent 将单个已接受的事件应用到实时状态。
	// 默认色写入等价于删除 (HDel)，其余为 HSet。
	ApplyEvent(ctx context.Context, event domain.PlacementEvent) error

	// ClearGridState 清空画布状态 (会话 reset 时调用)。
	ClearGridState(ctx context.Context, canvasID string) error

	// === Server-side Cooldown ===

	// ClaimPlacement 原子地尝试为 (canvasID, userID) 占用一个放置额度。
	// 占用成功返回 ok=true；冷却尚未结束时 ok=false 且 remaining 为剩余时长。
	ClaimPlacement(ctx context.Context, canvasID string, userID uint, cooldown time.Duration) (ok bool, remaining time.Duration, err error)

	// === 广播发布 ===

	// PublishFrame 将已接受事件的 {x,y,color} 帧发布到画布频道。
	// 这是事件从 backbone 到所有订阅客户端的唯一路径。
	PublishFrame(ctx context.Context, canvasID string, event domain.PlacementEvent) error

	// === Snapshot Cache ===

	// GetSnapshotCache 从缓存获取快照，未命中返回 ErrSnapshotNotFound。
	GetSnapshotCache(ctx context.Context, canvasID string) (*domain.Snapshot, error)

	// SetSnapshotCache 将快照写入缓存。ttl 为 0 表示不过期。
	SetSnapshotCache(ctx context.Context, canvasID string, snapshot *domain.Snapshot, ttl time.Duration) error

	// === Rate Limiting ===

	// CheckRateLimit 检查给定 key 的请求频率是否超限，并递增计数。
	// 返回 true 表示超限。与放置冷却无关，这是 HTTP 层的通用限流。
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// === Snapshot Worker State ===

	// GetLastSnapshotTime 获取画布上次快照的时间戳，没有记录时返回零值。
	GetLastSnapshotTime(ctx context.Context, canvasID string) (time.Time, error)

	// SetLastSnapshotTime 记录画布上次快照的时间戳。
	SetLastSnapshotTime(ctx context.Context, canvasID string, ts time.Time, ttl time.Duration) error
}
