package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/dto"
	"github.com/Evan-Lab/cloud-native/internal/service"
)

// SnapshotHandler 封装了画布状态查询的 HTTP 处理逻辑
type SnapshotHandler struct {
	canvasService   *service.CanvasService
	snapshotService *service.SnapshotService
}

// NewSnapshotHandler 创建 SnapshotHandler 实例
func NewSnapshotHandler(canvasService *service.CanvasService, snapshotService *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{canvasService: canvasService, snapshotService: snapshotService}
}

// GetSnapshot 返回画布当前状态的稀疏表示。
// 默认色的格子不出现在 pixels 中，客户端按默认色补齐。
func (h *SnapshotHandler) GetSnapshot(c *gin.Context) {
	canvasID := c.Param("id")
	logCtx := logrus.WithField("canvas_id", canvasID)

	canvas, err := h.canvasService.Get(c.Request.Context(), canvasID)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.GetSnapshot: Canvas lookup failed")
		HandleServiceError(c, err)
		return
	}

	state, err := h.snapshotService.GetStateForClient(c.Request.Context(), canvasID)
	if err != nil {
		logCtx.WithError(err).Error("Handler.GetSnapshot: Failed to load canvas state")
		HandleServiceError(c, err)
		return
	}

	logCtx.WithField("cells", len(state)).Debug("Handler.GetSnapshot: State served")
	c.JSON(http.StatusOK, dto.NewSnapshotDTO(canvas.Width, canvas.Height, state))
}
