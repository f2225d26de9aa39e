package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/domain"
	"github.com/Evan-Lab/cloud-native/internal/repository"
	"github.com/Evan-Lab/cloud-native/internal/tasks"
)

// PlacementApplyHandler 是 backbone 的消费端，也是提交到可见性的唯一路径:
// 持久化事件、应用到实时网格、发布广播帧。
type PlacementApplyHandler struct {
	eventRepo  repository.EventRepository
	canvasRepo repository.CanvasRepository
	stateRepo  repository.StateRepository
}

// NewPlacementApplyHandler 创建 Handler 实例
func NewPlacementApplyHandler(
	eventRepo repository.EventRepository,
	canvasRepo repository.CanvasRepository,
	stateRepo repository.StateRepository,
) *PlacementApplyHandler {
	if eventRepo == nil || canvasRepo == nil || stateRepo == nil {
		panic("All repositories must be non-nil for PlacementApplyHandler")
	}
	return &PlacementApplyHandler{
		eventRepo:  eventRepo,
		canvasRepo: canvasRepo,
		stateRepo:  stateRepo,
	}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *PlacementApplyHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	var payload tasks.PlacementApplyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal placement payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	event := payload.Event
	logCtx = logCtx.WithFields(logrus.Fields{
		"canvas_id": event.CanvasID,
		"author_id": event.AuthorID,
		"x":         event.X,
		"y":         event.Y,
	})

	// 防御性复验。队列中的事件理论上都已通过提交端验证，
	// 但画布可能在排队期间被删除或缩小; 无效事件丢弃而不重试。
	canvas, err := h.canvasRepo.FindByID(ctx, event.CanvasID)
	if err != nil {
		if errors.Is(err, repository.ErrCanvasNotFound) {
			logCtx.Warn("Dropping placement event: canvas no longer exists")
			return nil
		}
		logCtx.WithError(err).Error("Failed to load canvas while applying event")
		return fmt.Errorf("load canvas %s: %w", event.CanvasID, err)
	}
	if !canvas.InBounds(event.X, event.Y) {
		logCtx.Warn("Dropping placement event: out of bounds")
		return nil
	}

	// 1. 持久化事件日志
	if err := h.eventRepo.SaveBatch(ctx, []domain.PlacementEvent{event}); err != nil {
		logCtx.WithError(err).Error("Failed to persist placement event")
		return fmt.Errorf("persist event: %w", err)
	}

	// 2. 应用到实时网格状态
	if err := h.stateRepo.ApplyEvent(ctx, event); err != nil {
		logCtx.WithError(err).Error("Failed to apply event to grid state")
		return fmt.Errorf("apply event: %w", err)
	}

	// 3. 发布广播帧，订阅端 (包括发起者自己) 由此完成对账
	if err := h.stateRepo.PublishFrame(ctx, event.CanvasID, event); err != nil {
		logCtx.WithError(err).Error("Failed to publish broadcast frame")
		return fmt.Errorf("publish frame: %w", err)
	}

	logCtx.Debug("Placement event applied and broadcast")
	return nil
}
