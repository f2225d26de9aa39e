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
	"github.com/Evan-Lab/cloud-native/internal/dto"
	"github.com/Evan-Lab/cloud-native/internal/repository"
	"github.com/Evan-Lab/cloud-native/internal/repository/mocks"
	"github.com/Evan-Lab/cloud-native/internal/service"
)

// mockPublisher 是 EventPublisher 的 testify Mock
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishPlacement(ctx context.Context, event domain.PlacementEvent) error {
	ret := m.Called(ctx, event)
	return ret.Error(0)
}

func intPtr(v int) *int { return &v }

func activeCanvas() *domain.Canvas {
	return &domain.Canvas{
		ID:      "canvas-1",
		AdminID: 99,
		Name:    "test canvas",
		Width:   100,
		Height:  100,
		Status:  domain.SessionActive,
	}
}

func placementReq(x, y int, color string) dto.PlacementRequest {
	return dto.PlacementRequest{X: intPtr(x), Y: intPtr(y), Color: color, CanvasID: "canvas-1"}
}

func newPlacementService(canvasRepo *mocks.CanvasRepository, stateRepo *mocks.StateRepository, publisher *mockPublisher) *service.PlacementService {
	return service.NewPlacementService(canvasRepo, stateRepo, publisher, 35*time.Second)
}

func TestPlacementService_Submit_Success_PublishesExactlyOnce(t *testing.T) {
	// Arrange
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	publisher := new(mockPublisher)
	svc := newPlacementService(canvasRepo, stateRepo, publisher)
	ctx := context.Background()

	canvasRepo.On("FindByID", ctx, "canvas-1").Return(activeCanvas(), nil).Once()
	stateRepo.On("ClaimPlacement", ctx, "canvas-1", uint(7), 35*time.Second).
		Return(true, time.Duration(0), nil).Once()
	publisher.On("PublishPlacement", ctx, mock.MatchedBy(func(event domain.PlacementEvent) bool {
		assert.Equal(t, "canvas-1", event.CanvasID)
		assert.Equal(t, 5, event.X)
		assert.Equal(t, 5, event.Y)
		assert.Equal(t, "#EF4444", event.Color)
		assert.Equal(t, uint(7), event.AuthorID)
		assert.False(t, event.SubmittedAt.IsZero(), "submittedAt 应取服务端时钟")
		return true
	})).Return(nil).Once()

	// Act
	event, err := svc.Submit(ctx, 7, placementReq(5, 5, "#EF4444"))

	// Assert: 每个有效提交恰好发布一个事件
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "#EF4444", event.Color)
	canvasRepo.AssertExpectations(t)
	stateRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
	publisher.AssertNumberOfCalls(t, "PublishPlacement", 1)
}

func TestPlacementService_Submit_ValidationMatrix(t *testing.T) {
	ctx := context.Background()

	pausedCanvas := activeCanvas()
	pausedCanvas.Status = domain.SessionPaused

	tests := []struct {
		name    string
		req     dto.PlacementRequest
		canvas  *domain.Canvas
		findErr error
		wantErr error
	}{
		{
			name:    "缺少坐标",
			req:     dto.PlacementRequest{Color: "#EF4444", CanvasID: "canvas-1"},
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:    "缺少画布 ID",
			req:     dto.PlacementRequest{X: intPtr(1), Y: intPtr(1), Color: "#EF4444"},
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:    "画布不存在",
			req:     placementReq(1, 1, "#EF4444"),
			findErr: repository.ErrCanvasNotFound,
			wantErr: service.ErrCanvasNotFound,
		},
		{
			name:    "x 越界",
			req:     placementReq(100, 1, "#EF4444"),
			canvas:  activeCanvas(),
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:    "y 为负",
			req:     placementReq(1, -1, "#EF4444"),
			canvas:  activeCanvas(),
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:    "颜色不在调色板",
			req:     placementReq(1, 1, "#ABCDEF"),
			canvas:  activeCanvas(),
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:    "会话未激活",
			req:     placementReq(1, 1, "#EF4444"),
			canvas:  pausedCanvas,
			wantErr: service.ErrSessionNotActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvasRepo := new(mocks.CanvasRepository)
			stateRepo := new(mocks.StateRepository)
			publisher := new(mockPublisher)
			svc := newPlacementService(canvasRepo, stateRepo, publisher)

			if tt.canvas != nil {
				canvasRepo.On("FindByID", ctx, tt.req.CanvasID).Return(tt.canvas, nil).Once()
			} else if tt.findErr != nil {
				canvasRepo.On("FindByID", ctx, tt.req.CanvasID).Return(nil, tt.findErr).Once()
			}

			event, err := svc.Submit(ctx, 7, tt.req)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "期望 %v, 实际 %v", tt.wantErr, err)
			assert.Nil(t, event)
			// 验证失败的提交绝不发布
			publisher.AssertNotCalled(t, "PublishPlacement", mock.Anything, mock.Anything)
		})
	}
}

func TestPlacementService_Submit_CooldownActive(t *testing.T) {
	// Arrange
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	publisher := new(mockPublisher)
	svc := newPlacementService(canvasRepo, stateRepo, publisher)
	ctx := context.Background()

	canvasRepo.On("FindByID", ctx, "canvas-1").Return(activeCanvas(), nil).Once()
	// 冷却槽位被占用，剩余 12 秒
	stateRepo.On("ClaimPlacement", ctx, "canvas-1", uint(7), 35*time.Second).
		Return(false, 12*time.Second, nil).Once()

	// Act
	event, err := svc.Submit(ctx, 7, placementReq(1, 1, "#EF4444"))

	// Assert
	require.Error(t, err)
	assert.Nil(t, event)
	assert.True(t, errors.Is(err, service.ErrCooldownActive))

	var cooldownErr *service.CooldownError
	require.True(t, errors.As(err, &cooldownErr))
	assert.Equal(t, 12*time.Second, cooldownErr.Remaining)
	assert.Equal(t, 12, cooldownErr.RetryAfterSeconds())

	publisher.AssertNotCalled(t, "PublishPlacement", mock.Anything, mock.Anything)
}

func TestPlacementService_Submit_AdminBypassesCooldown(t *testing.T) {
	// Arrange: 提交者是画布管理员
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	publisher := new(mockPublisher)
	svc := newPlacementService(canvasRepo, stateRepo, publisher)
	ctx := context.Background()

	canvasRepo.On("FindByID", ctx, "canvas-1").Return(activeCanvas(), nil).Once()
	publisher.On("PublishPlacement", ctx, mock.AnythingOfType("domain.PlacementEvent")).Return(nil).Once()

	// Act: AdminID 是 99
	event, err := svc.Submit(ctx, 99, placementReq(1, 1, "#EF4444"))

	// Assert: 管理员不触发冷却占位
	require.NoError(t, err)
	require.NotNil(t, event)
	stateRepo.AssertNotCalled(t, "ClaimPlacement", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	publisher.AssertExpectations(t)
}

func TestPlacementService_Submit_PublishFailed(t *testing.T) {
	// Arrange
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	publisher := new(mockPublisher)
	svc := newPlacementService(canvasRepo, stateRepo, publisher)
	ctx := context.Background()

	canvasRepo.On("FindByID", ctx, "canvas-1").Return(activeCanvas(), nil).Once()
	stateRepo.On("ClaimPlacement", ctx, "canvas-1", uint(7), 35*time.Second).
		Return(true, time.Duration(0), nil).Once()
	publisher.On("PublishPlacement", ctx, mock.AnythingOfType("domain.PlacementEvent")).
		Return(errors.New("backbone unavailable")).Once()

	// Act
	event, err := svc.Submit(ctx, 7, placementReq(1, 1, "#EF4444"))

	// Assert: 发布失败向上报告，冷却额度已消耗 (不回滚)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrPublishFailed))
	assert.Nil(t, event)
	stateRepo.AssertExpectations(t)
}

func TestPlacementService_Submit_EraseUsesDefaultColor(t *testing.T) {
	// 默认色 (白) 在调色板语义里是合法的擦除写入
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	publisher := new(mockPublisher)
	svc := newPlacementService(canvasRepo, stateRepo, publisher)
	ctx := context.Background()

	canvasRepo.On("FindByID", ctx, "canvas-1").Return(activeCanvas(), nil).Once()
	stateRepo.On("ClaimPlacement", ctx, "canvas-1", uint(7), 35*time.Second).
		Return(true, time.Duration(0), nil).Once()
	publisher.On("PublishPlacement", ctx, mock.MatchedBy(func(event domain.PlacementEvent) bool {
		return event.IsErase()
	})).Return(nil).Once()

	event, err := svc.Submit(ctx, 7, placementReq(3, 4, domain.DefaultColor))

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.True(t, event.IsErase())
	publisher.AssertExpectations(t)
}

func TestPlacementService_Submit_NormalizesColorCase(t *testing.T) {
	// 小写的默认色必须归一成大写并保持擦除语义，
	// 否则消费端会把白色显式写进网格。
	canvasRepo := new(mocks.CanvasRepository)
	stateRepo := new(mocks.StateRepository)
	publisher := new(mockPublisher)
	svc := newPlacementService(canvasRepo, stateRepo, publisher)
	ctx := context.Background()

	canvasRepo.On("FindByID", ctx, "canvas-1").Return(activeCanvas(), nil).Once()
	stateRepo.On("ClaimPlacement", ctx, "canvas-1", uint(7), 35*time.Second).
		Return(true, time.Duration(0), nil).Once()
	publisher.On("PublishPlacement", ctx, mock.AnythingOfType("domain.PlacementEvent")).Return(nil).Once()

	event, err := svc.Submit(ctx, 7, placementReq(3, 4, "#ffffff"))

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, domain.DefaultColor, event.Color)
	assert.True(t, event.IsErase())

	// 普通颜色同样归一
	canvasRepo.On("FindByID", ctx, "canvas-1").Return(activeCanvas(), nil).Once()
	stateRepo.On("ClaimPlacement", ctx, "canvas-1", uint(7), 35*time.Second).
		Return(true, time.Duration(0), nil).Once()
	publisher.On("PublishPlacement", ctx, mock.AnythingOfType("domain.PlacementEvent")).Return(nil).Once()

	event, err = svc.Submit(ctx, 7, placementReq(5, 6, "#ef4444"))

	require.NoError(t, err)
	assert.Equal(t, "#EF4444", event.Color)
	publisher.AssertExpectations(t)
}
