package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/service"
)

// CanvasHandler 封装了与画布管理相关的 HTTP 处理逻辑
type CanvasHandler struct {
	canvasService *service.CanvasService
}

// NewCanvasHandler 创建 CanvasHandler 实例
func NewCanvasHandler(canvasService *service.CanvasService) *CanvasHandler {
	return &CanvasHandler{canvasService: canvasService}
}

// CreateCanvasRequest 定义创建画布请求的结构体
type CreateCanvasRequest struct {
	Name      string     `json:"name" binding:"required,min=1,max=100"`
	Width     int        `json:"width" binding:"omitempty,min=1,max=1000"`
	Height    int        `json:"height" binding:"omitempty,min=1,max=1000"`
	StartDate *time.Time `json:"start_date"` // 可选，缺省时由 start 动作填入
	EndDate   *time.Time `json:"end_date"`
}

// CreateCanvasResponse 定义创建画布成功的响应结构体
type CreateCanvasResponse struct {
	Message  string `json:"message"`
	CanvasID string `json:"canvas_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Status   string `json:"status"`
}

// CreateCanvas 处理创建新画布的请求
func (h *CanvasHandler) CreateCanvas(c *gin.Context) {
	// 1. 从 Gin 上下文中获取认证用户 ID
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	logCtx := logrus.WithField("user_id", userID)

	// 2. 绑定请求体
	var req CreateCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.CreateCanvas: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	var startDate, endDate time.Time
	if req.StartDate != nil {
		startDate = *req.StartDate
	}
	if req.EndDate != nil {
		endDate = *req.EndDate
	}

	// 3. 调用 Service 层创建画布，创建者成为画布管理员
	newCanvas, err := h.canvasService.Create(c.Request.Context(), userID, req.Name, req.Width, req.Height, startDate, endDate)
	if err != nil {
		logCtx.WithError(err).Error("Handler.CreateCanvas: Failed to create canvas via service")
		HandleServiceError(c, err)
		return
	}

	// 4. 成功响应
	logCtx.WithField("canvas_id", newCanvas.ID).Info("Handler.CreateCanvas: Canvas created successfully")
	c.JSON(http.StatusOK, CreateCanvasResponse{
		Message:  "Canvas created successfully",
		CanvasID: newCanvas.ID,
		Width:    newCanvas.Width,
		Height:   newCanvas.Height,
		Status:   string(newCanvas.Status),
	})
}

// GetCanvasResponse 定义查询画布的响应结构体
type GetCanvasResponse struct {
	CanvasID  string     `json:"canvas_id"`
	Name      string     `json:"name"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// GetCanvas 处理查询画布元信息的请求
func (h *CanvasHandler) GetCanvas(c *gin.Context) {
	canvasID := c.Param("id")

	canvas, err := h.canvasService.Get(c.Request.Context(), canvasID)
	if err != nil {
		logrus.WithField("canvas_id", canvasID).WithError(err).Warn("Handler.GetCanvas: Failed to get canvas")
		HandleServiceError(c, err)
		return
	}

	resp := GetCanvasResponse{
		CanvasID: canvas.ID,
		Name:     canvas.Name,
		Width:    canvas.Width,
		Height:   canvas.Height,
		Status:   string(canvas.Status),
	}
	if !canvas.StartDate.IsZero() {
		resp.StartDate = &canvas.StartDate
	}
	if !canvas.EndDate.IsZero() {
		resp.EndDate = &canvas.EndDate
	}
	c.JSON(http.StatusOK, resp)
}

// SessionActionRequest 定义会话控制请求的结构体
type SessionActionRequest struct {
	Action string `json:"action" binding:"required,oneof=start pause reset"`
}

// SessionAction 处理画布会话控制请求（仅画布管理员）
func (h *CanvasHandler) SessionAction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	canvasID := c.Param("id")
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "canvas_id": canvasID})

	var req SessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.SessionAction: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: action must be one of start/pause/reset"})
		return
	}
	logCtx = logCtx.WithField("action", req.Action)

	canvas, err := h.canvasService.ApplySessionAction(c.Request.Context(), userID, canvasID, req.Action)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.SessionAction: Failed to apply session action")
		HandleServiceError(c, err)
		return
	}

	logCtx.WithField("status", canvas.Status).Info("Handler.SessionAction: Session action applied")
	c.JSON(http.StatusOK, gin.H{
		"message":   "Session action applied",
		"canvas_id": canvas.ID,
		"status":    string(canvas.Status),
	})
}
