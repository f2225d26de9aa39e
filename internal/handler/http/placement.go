package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/dto"
	"github.com/Evan-Lab/cloud-native/internal/service"
)

// PlacementHandler 封装了像素放置相关的 HTTP 处理逻辑
type PlacementHandler struct {
	placementService *service.PlacementService
}

// NewPlacementHandler 创建 PlacementHandler 实例
func NewPlacementHandler(placementService *service.PlacementService) *PlacementHandler {
	return &PlacementHandler{placementService: placementService}
}

// DrawPixel 处理像素放置请求。
// 请求在这里只做格式校验，业务校验（边界、调色板、会话状态、冷却）
// 由 PlacementService 完成，通过校验后事件进入任务队列，写入由 worker 统一执行。
func (h *PlacementHandler) DrawPixel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	logCtx := logrus.WithField("user_id", userID)

	var req dto.PlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.DrawPixel: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: x, y, color and canvas_id are required"})
		return
	}
	logCtx = logCtx.WithFields(logrus.Fields{"canvas_id": req.CanvasID, "x": *req.X, "y": *req.Y, "color": req.Color})

	event, err := h.placementService.Submit(c.Request.Context(), userID, req)
	if err != nil {
		var cooldownErr *service.CooldownError
		switch {
		case errors.As(err, &cooldownErr):
			logCtx.WithField("remaining", cooldownErr.Remaining).Debug("Handler.DrawPixel: Cooldown active")
		case errors.Is(err, service.ErrPublishFailed):
			logCtx.WithError(err).Error("Handler.DrawPixel: Failed to publish placement event")
		default:
			logCtx.WithError(err).Warn("Handler.DrawPixel: Placement rejected")
		}
		HandleServiceError(c, err)
		return
	}

	// 202：事件已接受并入队，可见性由事件骨干保证
	logCtx.WithField("event_submitted_at", event.SubmittedAt).Info("Handler.DrawPixel: Placement accepted")
	c.JSON(http.StatusAccepted, gin.H{
		"message":   "Pixel placement accepted",
		"canvas_id": event.CanvasID,
		"x":         event.X,
		"y":         event.Y,
		"color":     event.Color,
	})
}
