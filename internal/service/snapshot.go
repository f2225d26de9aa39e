package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/domain"
	"github.com/Evan-Lab/cloud-native/internal/repository"
)

// 快照生成策略: 距上次快照超过 minInterval 且期间有新事件时才生成。
const (
	snapshotMinInterval  = 5 * time.Minute
	snapshotCacheTTL     = 10 * time.Minute
	lastSnapshotStateTTL = 72 * time.Hour
)

// SnapshotService 负责画布快照的读取与生成。
type SnapshotService struct {
	snapshotRepo repository.SnapshotRepository
	stateRepo    repository.StateRepository
	eventRepo    repository.EventRepository
}

// NewSnapshotService 创建 SnapshotService 实例。
func NewSnapshotService(
	snapshotRepo repository.SnapshotRepository,
	stateRepo repository.StateRepository,
	eventRepo repository.EventRepository,
) *SnapshotService {
	if snapshotRepo == nil || stateRepo == nil || eventRepo == nil {
		panic("All repositories must be non-nil for SnapshotService")
	}
	return &SnapshotService{
		snapshotRepo: snapshotRepo,
		stateRepo:    stateRepo,
		eventRepo:    eventRepo,
	}
}

// GetStateForClient 获取冷启动时发送给客户端的完整画布状态。
// 实时 Redis 状态优先；为空时回退到数据库最新快照并回填 Redis，
// 这样实例重启后客户端仍能恢复画布。
func (s *SnapshotService) GetStateForClient(ctx context.Context, canvasID string) (domain.GridState, error) {
	logCtx := logrus.WithFields(logrus.Fields{"canvas_id": canvasID, "operation": "GetStateForClient"})

	state, err := s.stateRepo.GetGridState(ctx, canvasID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to get live grid state")
		return nil, ErrInternalServer
	}
	if len(state) > 0 {
		return state, nil
	}

	// 实时状态为空: 可能确实是空画布，也可能是 Redis 数据丢失。
	// 先查快照缓存，未命中再回数据库。
	snapshot, err := s.stateRepo.GetSnapshotCache(ctx, canvasID)
	if err != nil {
		if !errors.Is(err, repository.ErrSnapshotNotFound) {
			logCtx.WithError(err).Warn("Snapshot cache lookup failed, falling back to database")
		}
		snapshot, err = s.snapshotRepo.GetLatest(ctx, canvasID)
		if err != nil {
			if errors.Is(err, repository.ErrSnapshotNotFound) {
				logCtx.Debug("No snapshot in database, returning empty state")
				return make(domain.GridState), nil
			}
			logCtx.WithError(err).Error("Failed to get latest snapshot from database")
			return nil, ErrInternalServer
		}
	}

	restored, parseErr := snapshot.ParseState()
	if parseErr != nil {
		logCtx.WithError(parseErr).Error("Failed to parse snapshot state from database")
		return nil, ErrInternalServer
	}

	// 回填 Redis，后续事件继续在恢复后的状态上累积。
	for key, color := range restored {
		x, y, err := domain.ParseCellKey(key)
		if err != nil {
			logCtx.WithError(err).Warn("Skipping malformed cell key in snapshot")
			continue
		}
		event := domain.PlacementEvent{CanvasID: canvasID, X: x, Y: y, Color: color}
		if err := s.stateRepo.ApplyEvent(ctx, event); err != nil {
			logCtx.WithError(err).Warn("Failed to rehydrate cell into live state")
		}
	}
	logCtx.WithField("cells", len(restored)).Info("Grid state restored from database snapshot")
	return restored, nil
}

// CheckAndGenerateSnapshot 检查画布是否需要生成新快照，需要时生成。
// 由周期性任务对每个活跃画布调用。
func (s *SnapshotService) CheckAndGenerateSnapshot(ctx context.Context, canvasID string) error {
	logCtx := logrus.WithFields(logrus.Fields{"canvas_id": canvasID, "operation": "CheckAndGenerateSnapshot"})

	lastTime, err := s.stateRepo.GetLastSnapshotTime(ctx, canvasID)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to read last snapshot time, proceeding as if none")
		lastTime = time.Time{}
	}
	if !lastTime.IsZero() && time.Since(lastTime) < snapshotMinInterval {
		logCtx.Debug("Snapshot interval not elapsed, skipping")
		return nil
	}

	count, err := s.eventRepo.CountSince(ctx, canvasID, lastTime)
	if err != nil {
		logCtx.WithError(err).Error("Failed to count events since last snapshot")
		return ErrInternalServer
	}
	if count == 0 {
		logCtx.Debug("No new events since last snapshot, skipping")
		return nil
	}

	state, err := s.stateRepo.GetGridState(ctx, canvasID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to get grid state for snapshot")
		return ErrInternalServer
	}

	snapshot := &domain.Snapshot{
		CanvasID:  canvasID,
		CreatedAt: time.Now().UTC(),
	}
	if err := snapshot.SetState(state); err != nil {
		logCtx.WithError(err).Error("Failed to serialize grid state for snapshot")
		return ErrInternalServer
	}

	if err := s.snapshotRepo.Save(ctx, snapshot); err != nil {
		logCtx.WithError(err).Error("Failed to persist snapshot")
		return ErrInternalServer
	}

	// 缓存与时间戳失败不影响快照本身，只记录。
	if err := s.stateRepo.SetSnapshotCache(ctx, canvasID, snapshot, snapshotCacheTTL); err != nil {
		logCtx.WithError(err).Warn("Failed to cache snapshot")
	}
	if err := s.stateRepo.SetLastSnapshotTime(ctx, canvasID, snapshot.CreatedAt, lastSnapshotStateTTL); err != nil {
		logCtx.WithError(err).Warn("Failed to record last snapshot time")
	}

	logCtx.WithFields(logrus.Fields{"cells": len(state), "events": count}).Info("Snapshot generated")
	return nil
}
