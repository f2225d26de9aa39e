package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/domain"
	"github.com/Evan-Lab/cloud-native/internal/dto"
	"github.com/Evan-Lab/cloud-native/internal/repository"
)

// EventPublisher 是核心对事件 backbone 的唯一视角:
// publish(event) -> ack | failure。由 asynq 实现。
type EventPublisher interface {
	PublishPlacement(ctx context.Context, event domain.PlacementEvent) error
}

// PlacementService 是客户端提交与事件 backbone 之间的权威闸门。
// 身份解析由上游的认证中间件完成；这里负责载荷验证、会话门控、
// 服务端冷却和事件发布。
type PlacementService struct {
	canvasRepo repository.CanvasRepository
	stateRepo  repository.StateRepository
	publisher  EventPublisher
	cooldown   time.Duration
}

// NewPlacementService 创建 PlacementService 实例。
// cooldown 是每个 (用户, 画布) 连续放置之间的最小间隔。
func NewPlacementService(
	canvasRepo repository.CanvasRepository,
	stateRepo repository.StateRepository,
	publisher EventPublisher,
	cooldown time.Duration,
) *PlacementService {
	if canvasRepo == nil || stateRepo == nil || publisher == nil {
		panic("All dependencies must be non-nil for PlacementService")
	}
	if cooldown <= 0 {
		cooldown = domain.DefaultCooldown
	}
	return &PlacementService{
		canvasRepo: canvasRepo,
		stateRepo:  stateRepo,
		publisher:  publisher,
		cooldown:   cooldown,
	}
}

// Submit 验证并发布一次像素放置。
// 每个有效提交恰好发布一个事件；本方法从不直接修改任何网格状态，
// backbone 是提交到可见性的唯一路径。不等待广播扇出。
func (s *PlacementService) Submit(ctx context.Context, userID uint, req dto.PlacementRequest) (*domain.PlacementEvent, error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"canvas_id": req.CanvasID,
	})

	// 1. 载荷形状验证。HTTP 层的 binding 已经检查过，
	// 这里再检查一次保证服务可以被其他入口安全调用。
	if req.X == nil || req.Y == nil || req.Color == "" || req.CanvasID == "" {
		return nil, ErrInvalidRequest
	}
	x, y := *req.X, *req.Y

	// 2. 画布存在性与边界/调色板/会话验证。
	canvas, err := s.canvasRepo.FindByID(ctx, req.CanvasID)
	if err != nil {
		if errors.Is(err, repository.ErrCanvasNotFound) {
			logCtx.Warn("Placement rejected: canvas not found")
			return nil, ErrCanvasNotFound
		}
		logCtx.WithError(err).Error("Failed to load canvas for placement")
		return nil, ErrInternalServer
	}
	if !canvas.InBounds(x, y) {
		logCtx.WithFields(logrus.Fields{"x": x, "y": y}).Warn("Placement rejected: out of bounds")
		return nil, ErrInvalidRequest
	}
	if !domain.ValidColor(req.Color) {
		logCtx.WithField("color", req.Color).Warn("Placement rejected: color not in palette")
		return nil, ErrInvalidRequest
	}
	// 调色板校验不区分大小写，这里归一成大写，
	// 事件日志和网格里只出现一种写法。
	color := domain.NormalizeColor(req.Color)
	if !canvas.IsActive() {
		logCtx.WithField("status", canvas.Status).Warn("Placement rejected: session not active")
		return nil, ErrSessionNotActive
	}

	// 3. 服务端冷却。客户端的本地计时器只是建议性的，
	// 这里的原子占位才是权威检查。画布管理员绕过冷却。
	if userID != canvas.AdminID {
		ok, remaining, err := s.stateRepo.ClaimPlacement(ctx, canvas.ID, userID, s.cooldown)
		if err != nil {
			logCtx.WithError(err).Error("Failed to claim placement cooldown slot")
			return nil, ErrInternalServer
		}
		if !ok {
			logCtx.WithField("remaining", remaining).Info("Placement rejected: cooldown active")
			return nil, &CooldownError{Remaining: remaining}
		}
	} else {
		logCtx.Debug("Admin bypass: cooldown ignored")
	}

	// 4. 构造不可变事件。submittedAt 取服务端时钟。
	event := domain.PlacementEvent{
		CanvasID:    canvas.ID,
		X:           x,
		Y:           y,
		Color:       color,
		AuthorID:    userID,
		SubmittedAt: time.Now().UTC(),
	}

	// 5. 发布到 backbone。失败时不回滚任何状态:
	// 冷却额度已被消耗，客户端的乐观写入由后续广播 (或其缺失) 纠正。
	if err := s.publisher.PublishPlacement(ctx, event); err != nil {
		logCtx.WithError(err).Error("Failed to publish placement event")
		return nil, ErrPublishFailed
	}

	logCtx.WithFields(logrus.Fields{"x": x, "y": y, "color": color}).Info("Placement event published")
	return &event, nil
}
