// Package tasks 定义事件 backbone 上的任务类型与载荷。
// asynq (基于 Redis 的持久化队列) 在这里扮演原始架构中 Pub/Sub 的角色:
// 已验证的放置事件先进入队列，worker 是唯一的消费者。
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/Evan-Lab/cloud-native/internal/domain"
)

// 任务类型常量
const (
	TypePlacementApply        = "placement:apply"
	TypeSnapshotPeriodicCheck = "snapshot:periodic_check"
)

// 队列名称。放置事件走 critical，后台快照走 default。
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// PlacementApplyPayload 是放置事件任务的数据结构
type PlacementApplyPayload struct {
	Event domain.PlacementEvent
}

// NewPlacementApplyTask 创建一个放置事件任务
func NewPlacementApplyTask(event domain.PlacementEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(PlacementApplyPayload{Event: event})
	if err != nil {
		return nil, fmt.Errorf("tasks: marshal placement payload: %w", err)
	}
	return asynq.NewTask(TypePlacementApply, payload, asynq.Queue(QueueCritical)), nil
}

// NewSnapshotPeriodicCheckTask 创建周期性快照检查任务
func NewSnapshotPeriodicCheckTask() *asynq.Task {
	return asynq.NewTask(TypeSnapshotPeriodicCheck, nil, asynq.Queue(QueueDefault))
}

// Publisher 是 service.EventPublisher 的 asynq 实现。
type Publisher struct {
	client *asynq.Client
}

// NewPublisher 创建 Publisher 实例
func NewPublisher(client *asynq.Client) *Publisher {
	if client == nil {
		panic("asynq client cannot be nil for Publisher")
	}
	return &Publisher{client: client}
}

// PublishPlacement 将事件作为任务入队。入队成功即为 backbone 的 ack；
// 之后的投递语义 (at-least-once) 由 asynq 保证。
func (p *Publisher) PublishPlacement(ctx context.Context, event domain.PlacementEvent) error {
	task, err := NewPlacementApplyTask(event)
	if err != nil {
		return err
	}
	if _, err := p.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("tasks: enqueue placement event: %w", err)
	}
	return nil
}
