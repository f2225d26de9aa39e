package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/dto"
	redisstate "github.com/Evan-Lab/cloud-native/internal/infra/state/redis"
	"github.com/Evan-Lab/cloud-native/internal/service"
)

// 包级别的 WebSocket 常量，供 hub 和 client 包内使用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	// 客户端上行只有 ping/pong，不需要大的读取缓冲
	maxMessageSize = 512
)

// HubMessage 定义了在 Hub 内部通道传递的消息类型
type HubMessage struct {
	Type     string  // "register", "unregister"
	CanvasID string  // 画布 ID
	UserID   uint    // 来源用户 ID
	Client   *Client // register/unregister 关联的 client
}

// canvasSubscription 持有一个画布的 Redis 订阅和它的取消函数。
// 每个有在线客户端的画布对应一个订阅 goroutine。
type canvasSubscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

// Hub 维护活跃客户端集合，并把事件骨干发布的像素帧扇出给所有订阅者。
// 像素提交走 HTTP，Hub 不处理任何上行业务消息。
type Hub struct {
	// 内部通道，处理所有来自 Client 的注册/注销事件
	messageChan chan HubMessage

	// 客户端集合，按画布 ID 组织
	// map[canvasID]map[*Client]bool
	canvases   map[string]map[*Client]bool
	canvasesMu sync.RWMutex

	// 每个画布的 Redis pub/sub 订阅，和 canvases 同步增减
	subs   map[string]*canvasSubscription
	subsMu sync.Mutex

	// 注入的依赖
	snapshotService *service.SnapshotService
	redisClient     *redis.Client
	keyPrefix       string
}

// NewHub 创建并返回一个新的 Hub 实例
func NewHub(snapshotService *service.SnapshotService, redisClient *redis.Client, keyPrefix string) *Hub {
	if snapshotService == nil {
		panic("SnapshotService cannot be nil for Hub")
	}
	if redisClient == nil {
		panic("Redis client cannot be nil for Hub")
	}
	return &Hub{
		// 创建带缓冲区的通道，大小可根据预期负载调整
		messageChan:     make(chan HubMessage, 512),
		canvases:        make(map[string]map[*Client]bool),
		subs:            make(map[string]*canvasSubscription),
		snapshotService: snapshotService,
		redisClient:     redisClient,
		keyPrefix:       keyPrefix,
	}
}

// Run 启动 Hub 的主事件处理循环。
// 它应该在一个单独的 goroutine 中运行。
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for msg := range h.messageChan {
		switch msg.Type {
		case "register":
			h.registerClient(msg.Client)
		case "unregister":
			h.unregisterClient(msg.Client)
		default:
			log.Warnf("Hub: Received unknown message type: %s from user %d on canvas %s", msg.Type, msg.UserID, msg.CanvasID)
		}
	}
	log.Info("Hub is shutting down...")
}

// registerClient 处理客户端注册逻辑
func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	canvasID := client.CanvasID()
	logCtx := logrus.WithFields(logrus.Fields{
		"canvas_id": canvasID,
		"user_id":   client.UserID(),
		"action":    "registerClient",
	})

	h.canvasesMu.Lock()
	if _, ok := h.canvases[canvasID]; !ok {
		h.canvases[canvasID] = make(map[*Client]bool)
		logCtx.Info("Client list created for new canvas")
	}
	h.canvases[canvasID][client] = true
	firstClient := len(h.canvases[canvasID]) == 1
	h.canvasesMu.Unlock()
	logCtx.Info("Client registered to Hub")

	// 第一个客户端上线时订阅该画布的 Redis 频道
	if firstClient {
		h.ensureSubscription(canvasID)
	}

	// 异步获取并发送初始快照给新客户端
	go h.sendInitialSnapshot(client)
}

// unregisterClient 处理客户端注销逻辑
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	canvasID := client.CanvasID()
	logCtx := logrus.WithFields(logrus.Fields{
		"canvas_id": canvasID,
		"user_id":   client.UserID(),
		"action":    "unregisterClient",
	})

	canvasEmpty := false
	h.canvasesMu.Lock()
	if canvasClients, exists := h.canvases[canvasID]; exists {
		if _, clientExists := canvasClients[client]; clientExists {
			delete(canvasClients, client)
			logCtx.Debug("Client removed from canvas map")

			// 关闭此客户端的 send 通道，这将导致其 WritePump 退出。
			// send 只由 Hub 关闭，且上面的成员检查保证每个客户端只注销一次，
			// 通道里残留的帧不影响关闭 (WritePump 会先排空再看到关闭)。
			close(client.send)
			logCtx.Info("Client send channel closed")

			if len(canvasClients) == 0 {
				delete(h.canvases, canvasID)
				canvasEmpty = true
				logCtx.Info("Canvas empty, removed from Hub")
			}
		} else {
			logCtx.Warn("Client not found in canvas during unregister")
		}
	} else {
		logCtx.Warn("Canvas not found during client unregister")
	}
	h.canvasesMu.Unlock()

	// 最后一个客户端离开后退订 Redis 频道
	if canvasEmpty {
		h.dropSubscription(canvasID)
	}
	logCtx.Info("Client unregistered from Hub")
}

// ensureSubscription 为画布建立 Redis pub/sub 订阅（如果尚不存在），
// 并启动一个 goroutine 把收到的像素帧扇出给该画布的所有客户端。
func (h *Hub) ensureSubscription(canvasID string) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	if _, ok := h.subs[canvasID]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	channel := redisstate.PubSubChannel(h.keyPrefix, canvasID)
	pubsub := h.redisClient.Subscribe(ctx, channel)
	h.subs[canvasID] = &canvasSubscription{pubsub: pubsub, cancel: cancel}

	logCtx := logrus.WithFields(logrus.Fields{
		"canvas_id": canvasID,
		"channel":   channel,
	})
	logCtx.Info("Subscribed to canvas event channel")

	go func() {
		defer logCtx.Info("Canvas subscription loop exited")
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				envelope, err := dto.NewEnvelope(dto.MessageTypePixel, json.RawMessage(msg.Payload))
				if err != nil {
					logCtx.WithError(err).Warn("Failed to wrap pixel frame, dropping")
					continue
				}
				// 帧来自事件骨干，发起者也要收到，不排除任何客户端
				h.broadcast(canvasID, envelope)
			}
		}
	}()
}

// dropSubscription 关闭并移除画布的 Redis 订阅
func (h *Hub) dropSubscription(canvasID string) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	sub, ok := h.subs[canvasID]
	if !ok {
		return
	}
	delete(h.subs, canvasID)
	sub.cancel()
	if err := sub.pubsub.Close(); err != nil {
		logrus.WithField("canvas_id", canvasID).WithError(err).Warn("Error closing canvas subscription")
	} else {
		logrus.WithField("canvas_id", canvasID).Info("Unsubscribed from canvas event channel")
	}
}

// StopAllSubscriptions 关闭所有画布订阅，用于优雅停机
func (h *Hub) StopAllSubscriptions() {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	for canvasID, sub := range h.subs {
		sub.cancel()
		_ = sub.pubsub.Close()
		delete(h.subs, canvasID)
	}
	logrus.WithField("component", "hub").Info("All canvas subscriptions stopped")
}

// sendInitialSnapshot 异步获取并发送快照给新连接的客户端
func (h *Hub) sendInitialSnapshot(client *Client) {
	if client == nil {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"canvas_id": client.CanvasID(),
		"user_id":   client.UserID(),
		"operation": "sendInitialSnapshot",
	})
	logCtx.Info("Attempting to send initial snapshot")

	// 使用后台 context，因为 Service 调用可能涉及 IO 且不应被原始请求取消
	ctx := context.Background()
	state, err := h.snapshotService.GetStateForClient(ctx, client.CanvasID())
	if err != nil {
		logCtx.WithError(err).Error("Failed to get canvas state from service")
		errorMsg, _ := dto.NewEnvelope(dto.MessageTypeError, dto.ErrorDTO{Error: "Failed to load initial canvas state"})
		// 尝试发送错误消息，忽略发送通道满的情况
		select {
		case client.send <- errorMsg:
		default:
		}
		return
	}

	snapshotMsg, err := dto.NewEnvelope(dto.MessageTypeSnapshot, dto.NewSnapshotDTO(client.Width(), client.Height(), state))
	if err != nil {
		logCtx.WithError(err).Error("Failed to marshal snapshot message")
		return
	}

	select {
	case client.send <- snapshotMsg:
		logCtx.WithField("cells", len(state)).Info("Snapshot message sent to client channel")
	default:
		// 如果发送通道已满，记录警告。客户端可能已断开。
		logCtx.Warn("Client send channel full when trying to send snapshot, message dropped")
	}
}

// broadcast 将消息发送给指定画布的所有客户端
func (h *Hub) broadcast(canvasID string, message []byte) {
	h.canvasesMu.RLock()
	canvasClients, ok := h.canvases[canvasID]
	// 创建一个接收者列表的副本，以避免长时间持有锁
	clientsToSend := make([]*Client, 0, len(canvasClients))
	if ok {
		for client := range canvasClients {
			clientsToSend = append(clientsToSend, client)
		}
	}
	h.canvasesMu.RUnlock()

	if !ok || len(clientsToSend) == 0 {
		return
	}

	logCtx := logrus.WithFields(logrus.Fields{
		"canvas_id":       canvasID,
		"message_size":    len(message),
		"recipient_count": len(clientsToSend),
	})
	logCtx.Debug("Broadcasting message to clients")

	for _, client := range clientsToSend {
		// 使用非阻塞发送，避免单个慢客户端阻塞广播
		select {
		case client.send <- message:
		default:
			// 让该客户端的 WritePump 负责处理后续问题（如断开连接）
			logCtx.WithField("receiver_user_id", client.UserID()).Warn("Client send channel full during broadcast, skipping this client")
		}
	}
}

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)。
// 这是 Client 向 Hub 发送消息的安全方式。
// 返回 true 如果消息成功入队，false 如果队列已满。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"message_type": msg.Type,
			"canvas_id":    msg.CanvasID,
			"user_id":      msg.UserID,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}
