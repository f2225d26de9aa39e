package worker

import (
	"context"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/domain"
	"github.com/Evan-Lab/cloud-native/internal/repository"
	"github.com/Evan-Lab/cloud-native/internal/service"
)

// SnapshotCheckHandler 处理周期性的快照检查任务。
// 对每个活跃画布调用 SnapshotService 判断是否需要生成新快照。
type SnapshotCheckHandler struct {
	canvasRepo      repository.CanvasRepository
	snapshotService *service.SnapshotService
}

// NewSnapshotCheckHandler 创建 Handler 实例
func NewSnapshotCheckHandler(canvasRepo repository.CanvasRepository, snapshotService *service.SnapshotService) *SnapshotCheckHandler {
	if canvasRepo == nil {
		panic("CanvasRepository cannot be nil for SnapshotCheckHandler")
	}
	if snapshotService == nil {
		panic("SnapshotService cannot be nil for SnapshotCheckHandler")
	}
	return &SnapshotCheckHandler{
		canvasRepo:      canvasRepo,
		snapshotService: snapshotService,
	}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *SnapshotCheckHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())
	logCtx.Debug("Processing periodic snapshot check task")

	canvases, err := h.canvasRepo.FindByStatus(ctx, domain.SessionActive)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list active canvases")
		return err
	}
	if len(canvases) == 0 {
		logCtx.Debug("No active canvases, skipping snapshot check")
		return nil
	}

	var wg sync.WaitGroup
	var failed int32
	var mu sync.Mutex

	for _, canvas := range canvases {
		wg.Add(1)
		go func(canvasID string) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := h.snapshotService.CheckAndGenerateSnapshot(checkCtx, canvasID); err != nil {
				logCtx.WithError(err).WithField("canvas_id", canvasID).Error("Snapshot check failed for canvas")
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(canvas.ID)
	}
	wg.Wait()

	// 单个画布失败不触发整个周期任务的重试
	if failed > 0 {
		logCtx.Warnf("Snapshot check completed with %d failures", failed)
	}
	return nil
}
