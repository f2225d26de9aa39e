package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/domain"
	"github.com/Evan-Lab/cloud-native/internal/repository"
)

// 会话操作。核心只观察操作之后的 ACTIVE/非 ACTIVE 门控。
const (
	SessionActionStart = "start"
	SessionActionPause = "pause"
	SessionActionReset = "reset"
)

// CanvasService 负责画布及其会话生命周期的业务逻辑。
type CanvasService struct {
	canvasRepo repository.CanvasRepository
	stateRepo  repository.StateRepository
}

// NewCanvasService 创建 CanvasService 实例。
func NewCanvasService(canvasRepo repository.CanvasRepository, stateRepo repository.StateRepository) *CanvasService {
	if canvasRepo == nil || stateRepo == nil {
		panic("All repositories must be non-nil for CanvasService")
	}
	return &CanvasService{
		canvasRepo: canvasRepo,
		stateRepo:  stateRepo,
	}
}

// Create 创建一个新画布，初始状态为 PENDING。
// 宽高缺省时使用默认网格大小。
func (s *CanvasService) Create(ctx context.Context, adminID uint, name string, width, height int, startDate, endDate time.Time) (*domain.Canvas, error) {
	logCtx := logrus.WithFields(logrus.Fields{"admin_id": adminID, "name": name})

	if width <= 0 {
		width = domain.DefaultGridWidth
	}
	if height <= 0 {
		height = domain.DefaultGridHeight
	}

	canvas := &domain.Canvas{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		Name:      name,
		Width:     width,
		Height:    height,
		Status:    domain.SessionPending,
		StartDate: startDate,
		EndDate:   endDate,
	}

	if err := s.canvasRepo.Save(ctx, canvas); err != nil {
		logCtx.WithError(err).Error("Failed to save new canvas")
		return nil, ErrInternalServer
	}

	logCtx.WithField("canvas_id", canvas.ID).Info("Canvas created successfully")
	return canvas, nil
}

// Get 返回画布元数据。
func (s *CanvasService) Get(ctx context.Context, canvasID string) (*domain.Canvas, error) {
	canvas, err := s.canvasRepo.FindByID(ctx, canvasID)
	if err != nil {
		if errors.Is(err, repository.ErrCanvasNotFound) {
			return nil, ErrCanvasNotFound
		}
		logrus.WithError(err).WithField("canvas_id", canvasID).Error("Failed to find canvas")
		return nil, ErrInternalServer
	}
	return canvas, nil
}

// ApplySessionAction 执行管理员发起的会话操作 (start/pause/reset)。
// reset 会清空实时网格状态并重新激活会话。
func (s *CanvasService) ApplySessionAction(ctx context.Context, userID uint, canvasID, action string) (*domain.Canvas, error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"canvas_id": canvasID,
		"action":    action,
	})

	canvas, err := s.Get(ctx, canvasID)
	if err != nil {
		return nil, err
	}
	if canvas.AdminID != userID {
		logCtx.Warn("Session action rejected: user is not canvas admin")
		return nil, ErrForbidden
	}

	switch action {
	case SessionActionStart:
		canvas.Status = domain.SessionActive
		if canvas.StartDate.IsZero() {
			canvas.StartDate = time.Now().UTC()
		}
	case SessionActionPause:
		canvas.Status = domain.SessionPaused
	case SessionActionReset:
		if err := s.stateRepo.ClearGridState(ctx, canvasID); err != nil {
			logCtx.WithError(err).Error("Failed to clear grid state during reset")
			return nil, ErrInternalServer
		}
		canvas.Status = domain.SessionActive
	default:
		return nil, ErrInvalidRequest
	}

	if err := s.canvasRepo.UpdateStatus(ctx, canvasID, canvas.Status); err != nil {
		logCtx.WithError(err).Error("Failed to update canvas status")
		return nil, ErrInternalServer
	}

	logCtx.WithField("status", canvas.Status).Info("Session action applied")
	return canvas, nil
}
