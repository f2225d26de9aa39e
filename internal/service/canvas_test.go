package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Evan-Lab/cloud-native/internal/domain"
	"github.com/Evan-Lab/cloud-native/internal/repository"
	"github.com/Evan-Lab/cloud-native/internal/repository/mocks"
	"github.com/Evan-Lab/cloud-native/internal/service"
)

func TestCanvasService_Create_Defaults(t *testing.T) {
	// Arrange
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	svc := service.NewCanvasService(canvasRepo, stateRepo)
	ctx := context.Background()

	canvasRepo.On("Save", ctx, mock.MatchedBy(func(canvas *domain.Canvas) bool {
		assert.NotEmpty(t, canvas.ID, "应分配 uuid")
		assert.Equal(t, uint(3), canvas.AdminID)
		assert.Equal(t, domain.DefaultGridWidth, canvas.Width, "宽度缺省应为默认值")
		assert.Equal(t, domain.DefaultGridHeight, canvas.Height)
		assert.Equal(t, domain.SessionPending, canvas.Status, "新画布应为 PENDING")
		return true
	})).Return(nil).Once()

	// Act: 宽高传 0 走默认
	canvas, err := svc.Create(ctx, 3, "my canvas", 0, 0, time.Time{}, time.Time{})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, canvas)
	canvasRepo.AssertExpectations(t)
}

func TestCanvasService_Get_NotFound(t *testing.T) {
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	svc := service.NewCanvasService(canvasRepo, stateRepo)
	ctx := context.Background()

	canvasRepo.On("FindByID", ctx, "missing").Return(nil, repository.ErrCanvasNotFound).Once()

	canvas, err := svc.Get(ctx, "missing")

	require.Error(t, err)
	assert.Nil(t, canvas)
	assert.True(t, errors.Is(err, service.ErrCanvasNotFound))
}

func TestCanvasService_ApplySessionAction_NonAdminForbidden(t *testing.T) {
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	svc := service.NewCanvasService(canvasRepo, stateRepo)
	ctx := context.Background()

	canvasRepo.On("FindByID", ctx, "canvas-1").Return(activeCanvas(), nil).Once()

	// Act: AdminID 是 99，请求者是 7
	canvas, err := svc.ApplySessionAction(ctx, 7, "canvas-1", service.SessionActionStart)

	require.Error(t, err)
	assert.Nil(t, canvas)
	assert.True(t, errors.Is(err, service.ErrForbidden))
	canvasRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCanvasService_ApplySessionAction_Start(t *testing.T) {
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	svc := service.NewCanvasService(canvasRepo, stateRepo)
	ctx := context.Background()

	pending := activeCanvas()
	pending.Status = domain.SessionPending

	canvasRepo.On("FindByID", ctx, "canvas-1").Return(pending, nil).Once()
	canvasRepo.On("UpdateStatus", ctx, "canvas-1", domain.SessionActive).Return(nil).Once()

	canvas, err := svc.ApplySessionAction(ctx, 99, "canvas-1", service.SessionActionStart)

	require.NoError(t, err)
	require.NotNil(t, canvas)
	assert.Equal(t, domain.SessionActive, canvas.Status)
	assert.False(t, canvas.StartDate.IsZero(), "start 应填充开始时间")
	canvasRepo.AssertExpectations(t)
}

func TestCanvasService_ApplySessionAction_Pause(t *testing.T) {
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	svc := service.NewCanvasService(canvasRepo, stateRepo)
	ctx := context.Background()

	canvasRepo.On("FindByID", ctx, "canvas-1").Return(activeCanvas(), nil).Once()
	canvasRepo.On("UpdateStatus", ctx, "canvas-1", domain.SessionPaused).Return(nil).Once()

	canvas, err := svc.ApplySessionAction(ctx, 99, "canvas-1", service.SessionActionPause)

	require.NoError(t, err)
	assert.Equal(t, domain.SessionPaused, canvas.Status)
	// pause 不触碰网格状态
	stateRepo.AssertNotCalled(t, "ClearGridState", mock.Anything, mock.Anything)
}

func TestCanvasService_ApplySessionAction_Reset_ClearsGridAndReactivates(t *testing.T) {
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	svc := service.NewCanvasService(canvasRepo, stateRepo)
	ctx := context.Background()

	paused := activeCanvas()
	paused.Status = domain.SessionPaused

	canvasRepo.On("FindByID", ctx, "canvas-1").Return(paused, nil).Once()
	stateRepo.On("ClearGridState", ctx, "canvas-1").Return(nil).Once()
	canvasRepo.On("UpdateStatus", ctx, "canvas-1", domain.SessionActive).Return(nil).Once()

	canvas, err := svc.ApplySessionAction(ctx, 99, "canvas-1", service.SessionActionReset)

	require.NoError(t, err)
	assert.Equal(t, domain.SessionActive, canvas.Status, "reset 应重新激活会话")
	stateRepo.AssertExpectations(t)
	canvasRepo.AssertExpectations(t)
}

func TestCanvasService_ApplySessionAction_UnknownAction(t *testing.T) {
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	svc := service.NewCanvasService(canvasRepo, stateRepo)
	ctx := context.Background()

	canvasRepo.On("FindByID", ctx, "canvas-1").Return(activeCanvas(), nil).Once()

	canvas, err := svc.ApplySessionAction(ctx, 99, "canvas-1", "explode")

	require.Error(t, err)
	assert.Nil(t, canvas)
	assert.True(t, errors.Is(err, service.ErrInvalidRequest))
}
