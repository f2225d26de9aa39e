package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/domain"
	"github.com/Evan-Lab/cloud-native/internal/dto"
	"github.com/Evan-Lab/cloud-native/internal/repository"
)

// RedisStateRepository 是 StateRepository 接口的 Redis 实现
type RedisStateRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStateRepository 创建 RedisStateRepository 实例
func NewRedisStateRepository(client *redis.Client, keyPrefix string) *RedisStateRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisStateRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "pc:" // 默认前缀 "pc:" (pixel canvas)
	}
	return &RedisStateRepository{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// --- Key Generation Helpers ---

func (r *RedisStateRepository) gridStateKey(canvasID string) string {
	return fmt.Sprintf("%scanvas:%s:state", r.keyPrefix, canvasID)
}

func (r *RedisStateRepository) cooldownKey(canvasID string, userID uint) string {
	return fmt.Sprintf("%scanvas:%s:cooldown:%d", r.keyPrefix, canvasID, userID)
}

func (r *RedisStateRepository) snapshotCacheKey(canvasID string) string {
	return fmt.Sprintf("%scanvas:%s:snapshot", r.keyPrefix, canvasID)
}

func (r *RedisStateRepository) lastSnapshotKey(canvasID string) string {
	return fmt.Sprintf("%scanvas:%s:last_snapshot", r.keyPrefix, canvasID)
}

// PubSubChannel 返回画布广播频道的名称。
// Hub 的订阅端使用同一函数，保证发布/订阅两侧的命名一致。
func PubSubChannel(keyPrefix, canvasID string) string {
	if keyPrefix == "" {
		keyPrefix = "pc:"
	}
	return fmt.Sprintf("%scanvas:%s:events", keyPrefix, canvasID)
}

// --- StateRepository Interface Implementation ---

// GetGridState 获取指定画布的当前完整状态 (来自 Redis Hash)
func (r *RedisStateRepository) GetGridState(ctx context.Context, canvasID string) (domain.GridState, error) {
	key := r.gridStateKey(canvasID)
	stateMap, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to get grid state for canvas %s from %s: %w", canvasID, key, err)
	}
	return domain.GridState(stateMap), nil
}

// ApplyEvent 将单个已接受的事件应用到 Redis 中的实时状态。
// 写入默认色等价于删除条目，保持稀疏表示的归一化不变量。
func (r *RedisStateRepository) ApplyEvent(ctx context.Context, event domain.PlacementEvent) error {
	stateKey := r.gridStateKey(event.CanvasID)
	fieldKey := domain.CellKey(event.X, event.Y)
	var cmdErr error
	if event.IsErase() {
		cmdErr = r.client.HDel(ctx, stateKey, fieldKey).Err()
	} else {
		cmdErr = r.client.HSet(ctx, stateKey, fieldKey, event.Color).Err()
	}
	if cmdErr != nil {
		return fmt.Errorf("redis: failed to apply event to state for canvas %s (key: %s, field: %s): %w",
			event.CanvasID, stateKey, fieldKey, cmdErr)
	}
	return nil
}

// ClearGridState 清空画布状态 (会话 reset)
func (r *RedisStateRepository) ClearGridState(ctx context.Context, canvasID string) error {
	key := r.gridStateKey(canvasID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: failed to clear grid state for canvas %s: %w", canvasID, err)
	}
	return nil
}

// ClaimPlacement 原子地尝试占用一个放置额度。
// SET NX PX: 占位成功表示冷却已过；失败时读取 PTTL 得到剩余时长。
func (r *RedisStateRepository) ClaimPlacement(ctx context.Context, canvasID string, userID uint, cooldown time.Duration) (bool, time.Duration, error) {
	key := r.cooldownKey(canvasID, userID)
	ok, err := r.client.SetNX(ctx, key, time.Now().UTC().Unix(), cooldown).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis: failed to claim placement for user %d on canvas %s: %w", userID, canvasID, err)
	}
	if ok {
		return true, 0, nil
	}
	remaining, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis: failed to read cooldown ttl for user %d on canvas %s: %w", userID, canvasID, err)
	}
	if remaining < 0 {
		// key 在 SetNX 和 PTTL 之间过期了，视为冷却刚结束
		remaining = 0
	}
	return false, remaining, nil
}

// PublishFrame 将已接受事件的帧发布到画布频道。
func (r *RedisStateRepository) PublishFrame(ctx context.Context, canvasID string, event domain.PlacementEvent) error {
	channel := PubSubChannel(r.keyPrefix, canvasID)
	frame := dto.PixelFrame{X: event.X, Y: event.Y, Color: event.Color}
	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal frame for publish (canvas %s): %w", canvasID, err)
	}
	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"channel":      channel,
			"payload_size": len(payload),
			"canvas_id":    canvasID,
		}).WithError(err).Error("Redis Publish failed")
		return fmt.Errorf("redis: failed to publish frame to channel %s: %w", channel, err)
	}
	return nil
}

// GetSnapshotCache 尝试从 Redis 缓存中获取快照。
func (r *RedisStateRepository) GetSnapshotCache(ctx context.Context, canvasID string) (*domain.Snapshot, error) {
	key := r.snapshotCacheKey(canvasID)
	snapshotStr, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("redis: failed to get snapshot cache for canvas %s from %s: %w", canvasID, key, err)
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal([]byte(snapshotStr), &snapshot); err != nil {
		return nil, fmt.Errorf("redis: failed to unmarshal snapshot cache for canvas %s: %w", canvasID, err)
	}
	return &snapshot, nil
}

// SetSnapshotCache 将快照存入 Redis 缓存。ttl 为 0 表示不过期。
func (r *RedisStateRepository) SetSnapshotCache(ctx context.Context, canvasID string, snapshot *domain.Snapshot, ttl time.Duration) error {
	key := r.snapshotCacheKey(canvasID)
	snapshotBytes, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal snapshot for cache (canvas %s): %w", canvasID, err)
	}
	if err := r.client.Set(ctx, key, snapshotBytes, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set snapshot cache for canvas %s on key %s: %w", canvasID, key, err)
	}
	return nil
}

// CheckRateLimit 检查给定 key 的请求频率是否超限，并递增计数。
func (r *RedisStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipe := r.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: pipeline failed for rate limit check on key %s: %w", key, err)
	}
	count, err := incrCmd.Result()
	if err != nil {
		return false, fmt.Errorf("redis: failed to get incr result for rate limit on key %s: %w", key, err)
	}
	return count > int64(limit), nil
}

// GetLastSnapshotTime 获取画布上次快照的时间戳。
func (r *RedisStateRepository) GetLastSnapshotTime(ctx context.Context, canvasID string) (time.Time, error) {
	key := r.lastSnapshotKey(canvasID)
	unixStr, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("redis: failed to get last snapshot time for canvas %s: %w", canvasID, err)
	}
	var unix int64
	if _, err := fmt.Sscanf(unixStr, "%d", &unix); err != nil {
		return time.Time{}, fmt.Errorf("redis: failed to parse last snapshot time '%s' for canvas %s: %w", unixStr, canvasID, err)
	}
	return time.Unix(unix, 0).UTC(), nil
}

// SetLastSnapshotTime 记录画布上次快照的时间戳。
func (r *RedisStateRepository) SetLastSnapshotTime(ctx context.Context, canvasID string, ts time.Time, ttl time.Duration) error {
	key := r.lastSnapshotKey(canvasID)
	if err := r.client.Set(ctx, key, ts.UTC().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set last snapshot time for canvas %s: %w", canvasID, err)
	}
	return nil
}
