package service_test

import (
	"context"
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

func newSnapshotService(snapshotRepo *mocks.SnapshotRepository, stateRepo *mocks.StateRepository, eventRepo *mocks.EventRepository) *service.SnapshotService {
	return service.NewSnapshotService(snapshotRepo, stateRepo, eventRepo)
}

func TestSnapshotService_GetStateForClient_LiveStatePreferred(t *testing.T) {
	snapshotRepo := new(mocks.SnapshotRepository)
	stateRepo := new(mocks.StateRepository)
	eventRepo := new(mocks.EventRepository)
	svc := newSnapshotService(snapshotRepo, stateRepo, eventRepo)
	ctx := context.Background()

	live := domain.GridState{"5:5": "#EF4444"}
	stateRepo.On("GetGridState", ctx, "canvas-1").Return(live, nil).Once()

	state, err := svc.GetStateForClient(ctx, "canvas-1")

	require.NoError(t, err)
	assert.Equal(t, live, state)
	// 实时状态非空时不回退到缓存或数据库
	stateRepo.AssertNotCalled(t, "GetSnapshotCache", mock.Anything, mock.Anything)
	snapshotRepo.AssertNotCalled(t, "GetLatest", mock.Anything, mock.Anything)
}

func TestSnapshotService_GetStateForClient_EmptyEverywhere(t *testing.T) {
	snapshotRepo := new(mocks.SnapshotRepository)
	stateRepo := new(mocks.StateRepository)
	eventRepo := new(mocks.EventRepository)
	svc := newSnapshotService(snapshotRepo, stateRepo, eventRepo)
	ctx := context.Background()

	stateRepo.On("GetGridState", ctx, "canvas-1").Return(domain.GridState{}, nil).Once()
	stateRepo.On("GetSnapshotCache", ctx, "canvas-1").Return(nil, repository.ErrSnapshotNotFound).Once()
	snapshotRepo.On("GetLatest", ctx, "canvas-1").Return(nil, repository.ErrSnapshotNotFound).Once()

	state, err := svc.GetStateForClient(ctx, "canvas-1")

	require.NoError(t, err)
	assert.Empty(t, state, "全新画布返回空状态而不是错误")
}

func TestSnapshotService_GetStateForClient_RestoresFromDatabase(t *testing.T) {
	snapshotRepo := new(mocks.SnapshotRepository)
	stateRepo := new(mocks.StateRepository)
	eventRepo := new(mocks.EventRepository)
	svc := newSnapshotService(snapshotRepo, stateRepo, eventRepo)
	ctx := context.Background()

	stored := &domain.Snapshot{CanvasID: "canvas-1", CreatedAt: time.Now()}
	require.NoError(t, stored.SetState(domain.GridState{"1:2": "#3B82F6", "3:4": "#EF4444"}))

	stateRepo.On("GetGridState", ctx, "canvas-1").Return(domain.GridState{}, nil).Once()
	stateRepo.On("GetSnapshotCache", ctx, "canvas-1").Return(nil, repository.ErrSnapshotNotFound).Once()
	snapshotRepo.On("GetLatest", ctx, "canvas-1").Return(stored, nil).Once()
	// 每个恢复的单元格都回填进实时状态
	stateRepo.On("ApplyEvent", ctx, mock.AnythingOfType("domain.PlacementEvent")).Return(nil).Times(2)

	state, err := svc.GetStateForClient(ctx, "canvas-1")

	require.NoError(t, err)
	assert.Equal(t, "#3B82F6", state.Get(1, 2))
	assert.Equal(t, "#EF4444", state.Get(3, 4))
	stateRepo.AssertExpectations(t)
}

func TestSnapshotService_GetStateForClient_CacheHitSkipsDatabase(t *testing.T) {
	snapshotRepo := new(mocks.SnapshotRepository)
	stateRepo := new(mocks.StateRepository)
	eventRepo := new(mocks.EventRepository)
	svc := newSnapshotService(snapshotRepo, stateRepo, eventRepo)
	ctx := context.Background()

	cached := &domain.Snapshot{CanvasID: "canvas-1", CreatedAt: time.Now()}
	require.NoError(t, cached.SetState(domain.GridState{"7:7": "#10B981"}))

	stateRepo.On("GetGridState", ctx, "canvas-1").Return(domain.GridState{}, nil).Once()
	stateRepo.On("GetSnapshotCache", ctx, "canvas-1").Return(cached, nil).Once()
	stateRepo.On("ApplyEvent", ctx, mock.AnythingOfType("domain.PlacementEvent")).Return(nil).Once()

	state, err := svc.GetStateForClient(ctx, "canvas-1")

	require.NoError(t, err)
	assert.Equal(t, "#10B981", state.Get(7, 7))
	snapshotRepo.AssertNotCalled(t, "GetLatest", mock.Anything, mock.Anything)
}

func TestSnapshotService_CheckAndGenerateSnapshot_SkipsWhenNoNewEvents(t *testing.T) {
	snapshotRepo := new(mocks.SnapshotRepository)
	stateRepo := new(mocks.StateRepository)
	eventRepo := new(mocks.EventRepository)
	svc := newSnapshotService(snapshotRepo, stateRepo, eventRepo)
	ctx := context.Background()

	lastTime := time.Now().Add(-time.Hour)
	stateRepo.On("GetLastSnapshotTime", ctx, "canvas-1").Return(lastTime, nil).Once()
	eventRepo.On("CountSince", ctx, "canvas-1", lastTime).Return(int64(0), nil).Once()

	err := svc.CheckAndGenerateSnapshot(ctx, "canvas-1")

	require.NoError(t, err)
	snapshotRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSnapshotService_CheckAndGenerateSnapshot_SkipsWithinInterval(t *testing.T) {
	snapshotRepo := new(mocks.SnapshotRepository)
	stateRepo := new(mocks.StateRepository)
	eventRepo := new(mocks.EventRepository)
	svc := newSnapshotService(snapshotRepo, stateRepo, eventRepo)
	ctx := context.Background()

	stateRepo.On("GetLastSnapshotTime", ctx, "canvas-1").Return(time.Now().Add(-time.Minute), nil).Once()

	err := svc.CheckAndGenerateSnapshot(ctx, "canvas-1")

	require.NoError(t, err)
	eventRepo.AssertNotCalled(t, "CountSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestSnapshotService_CheckAndGenerateSnapshot_GeneratesAndCaches(t *testing.T) {
	snapshotRepo := new(mocks.SnapshotRepository)
	stateRepo := new(mocks.StateRepository)
	eventRepo := new(mocks.EventRepository)
	svc := newSnapshotService(snapshotRepo, stateRepo, eventRepo)
	ctx := context.Background()

	lastTime := time.Now().Add(-time.Hour)
	grid := domain.GridState{"1:1": "#EF4444"}

	stateRepo.On("GetLastSnapshotTime", ctx, "canvas-1").Return(lastTime, nil).Once()
	eventRepo.On("CountSince", ctx, "canvas-1", lastTime).Return(int64(42), nil).Once()
	stateRepo.On("GetGridState", ctx, "canvas-1").Return(grid, nil).Once()
	snapshotRepo.On("Save", ctx, mock.MatchedBy(func(s *domain.Snapshot) bool {
		state, err := s.ParseState()
		return err == nil && s.CanvasID == "canvas-1" && state.Get(1, 1) == "#EF4444"
	})).Return(nil).Once()
	stateRepo.On("SetSnapshotCache", ctx, "canvas-1", mock.AnythingOfType("*domain.Snapshot"), mock.AnythingOfType("time.Duration")).Return(nil).Once()
	stateRepo.On("SetLastSnapshotTime", ctx, "canvas-1", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Duration")).Return(nil).Once()

	err := svc.CheckAndGenerateSnapshot(ctx, "canvas-1")

	require.NoError(t, err)
	snapshotRepo.AssertExpectations(t)
	stateRepo.AssertExpectations(t)
}
