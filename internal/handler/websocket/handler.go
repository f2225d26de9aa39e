package websocket

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/hub"
	"github.com/Evan-Lab/cloud-native/internal/middleware"
	"github.com/Evan-Lab/cloud-native/internal/service"
)

// WebSocketHandler 负责处理 WebSocket 升级请求和客户端注册
type WebSocketHandler struct {
	upgrader      websocket.Upgrader
	hub           *hub.Hub
	canvasService *service.CanvasService // 验证画布存在并取得尺寸
}

// NewWebSocketHandler 创建 WebSocketHandler 实例
func NewWebSocketHandler(h *hub.Hub, canvasService *service.CanvasService) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	if canvasService == nil {
		panic("CanvasService cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// 允许所有来源连接 (生产环境应配置具体的允许来源)
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return &WebSocketHandler{
		upgrader:      upgrader,
		hub:           h,
		canvasService: canvasService,
	}
}

// HandleConnection 处理 WebSocket 连接请求
// URL 预期格式: /ws/canvas/{id}
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	// 1. 获取认证用户 ID (由 Auth 中间件设置)
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		logrus.Warn("WS Handler: User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return // 返回 HTTP 错误，因为此时还未升级到 WebSocket
	}
	userID, ok := userIDAny.(uint)
	if !ok {
		logrus.Error("WS Handler: User ID in context is not uint")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	logCtx := logrus.WithField("user_id", userID)

	// 2. 获取并验证画布 (从 URL 参数)
	canvasID := c.Param("id")
	logCtx = logCtx.WithField("canvas_id", canvasID)

	canvas, err := h.canvasService.Get(c.Request.Context(), canvasID)
	if err != nil {
		logCtx.WithError(err).Warn("WS Handler: Canvas lookup failed")
		if errors.Is(err, service.ErrCanvasNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Canvas not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate canvas"})
		}
		return
	}
	logCtx.Debug("WS Handler: Canvas validated")

	// 3. 升级 HTTP 连接到 WebSocket
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 方法会自动发送 HTTP 错误响应，所以这里只需要记录日志
		logCtx.WithError(err).Error("WS Handler: Failed to upgrade connection")
		return
	}
	logCtx.Info("WS Handler: Connection upgraded to WebSocket")

	// 4. 创建 Client 对象并注册到 Hub
	client := hub.NewClient(h.hub, conn, canvas.ID, userID, canvas.Width, canvas.Height)

	registerMsg := hub.HubMessage{
		Type:     "register",
		Client:   client,
		CanvasID: client.CanvasID(),
		UserID:   client.UserID(),
	}
	if !h.hub.QueueMessage(registerMsg) {
		// Hub 的通道满了，注册失败
		logCtx.Error("WS Handler: Hub message channel full, failed to register client")
		client.CloseConn()
		return
	}
	logCtx.Info("WS Handler: Client registration request queued to Hub")

	// 5. 启动客户端的读写 Goroutine
	// 后续的 WebSocket 通信由 client 的读写泵处理
	client.Run()
}
