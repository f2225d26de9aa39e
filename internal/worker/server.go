package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/repository"
	"github.com/Evan-Lab/cloud-native/internal/service"
	"github.com/Evan-Lab/cloud-native/internal/tasks"
)

// WorkerServer 封装了 asynq worker server 的启动和关闭逻辑
type WorkerServer struct {
	server          *asynq.Server
	log             *logrus.Entry
	eventRepo       repository.EventRepository
	canvasRepo      repository.CanvasRepository
	stateRepo       repository.StateRepository
	snapshotService *service.SnapshotService
}

// NewWorkerServer 创建一个新的 WorkerServer 实例
func NewWorkerServer(
	redisOpt asynq.RedisClientOpt,
	eventRepo repository.EventRepository,
	canvasRepo repository.CanvasRepository,
	stateRepo repository.StateRepository,
	snapshotService *service.SnapshotService,
	logger *logrus.Logger,
) *WorkerServer {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.QueueCritical: 6,
				tasks.QueueDefault:  3,
				"low":               1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &WorkerServer{
		server:          server,
		log:             logEntry,
		eventRepo:       eventRepo,
		canvasRepo:      canvasRepo,
		stateRepo:       stateRepo,
		snapshotService: snapshotService,
	}
}

// Start 运行 worker server。应该在一个单独的 goroutine 中调用。
func (ws *WorkerServer) Start() {
	mux := asynq.NewServeMux()

	placementHandler := NewPlacementApplyHandler(ws.eventRepo, ws.canvasRepo, ws.stateRepo)
	mux.HandleFunc(tasks.TypePlacementApply, placementHandler.ProcessTask)

	snapshotHandler := NewSnapshotCheckHandler(ws.canvasRepo, ws.snapshotService)
	mux.HandleFunc(tasks.TypeSnapshotPeriodicCheck, snapshotHandler.ProcessTask)

	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(mux); err != nil {
		if !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		}
		ws.log.Info("Worker server stopped.")
	}
}

// Shutdown 优雅地关闭 worker server
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
