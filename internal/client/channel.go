package client

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/dto"
)

// ReconnectDelay 是非正常断开后两次重连尝试之间的固定间隔
const ReconnectDelay = 3 * time.Second

// Channel 订阅画布的广播连接，把服务端接受的像素帧送进本地 Store。
// 状态机: DISCONNECTED -> CONNECTING -> CONNECTED ->
// (正常关闭) DISCONNECTED | (异常关闭) RECONNECT_WAIT -> CONNECTING。
// 只有非调用方发起的断开才会自动重连。
type Channel struct {
	url   string // 完整的 ws endpoint，形如 ws://host/ws/canvas/{id}
	token string
	store *Store
	log   *logrus.Entry

	mu             sync.Mutex
	conn           *websocket.Conn
	connected      bool
	suppressed     bool // Disconnect() 置位，抑制自动重连
	reconnectTimer *time.Timer

	dialer         *websocket.Dialer
	reconnectDelay time.Duration
}

// NewChannel 创建一个广播订阅。store 必须非 nil。
func NewChannel(url, token string, store *Store) *Channel {
	if store == nil {
		panic("Store cannot be nil for Channel")
	}
	return &Channel{
		url:            url,
		token:          token,
		store:          store,
		dialer:         websocket.DefaultDialer,
		reconnectDelay: ReconnectDelay,
		log: logrus.WithFields(logrus.Fields{
			"component": "broadcast_channel",
			"canvas_id": store.CanvasID(),
		}),
	}
}

// Connect 建立连接并启动读取循环。
// 连接失败时按固定间隔自动重试，除非之后调用了 Disconnect。
func (c *Channel) Connect() error {
	c.mu.Lock()
	c.suppressed = false
	c.mu.Unlock()
	return c.dial()
}

func (c *Channel) dial() error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	conn, resp, err := c.dialer.Dial(c.url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		c.log.WithError(err).Warn("Broadcast channel dial failed")
		c.scheduleReconnect()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.log.Info("Broadcast channel connected")

	go c.readLoop(conn)
	return nil
}

// readLoop 持续读取入站帧直到连接断开。
// 格式不对的帧被丢弃并记录警告，绝不终止连接或污染网格。
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			clean := websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
			c.mu.Lock()
			c.connected = false
			c.conn = nil
			c.mu.Unlock()

			if clean {
				c.log.Info("Broadcast channel closed cleanly")
				return
			}
			c.log.WithError(err).Warn("Broadcast channel lost, scheduling reconnect")
			c.scheduleReconnect()
			return
		}
		c.handleMessage(message)
	}
}

func (c *Channel) handleMessage(message []byte) {
	var envelope dto.WSEnvelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		c.log.WithError(err).Warn("Dropping malformed broadcast message")
		return
	}

	switch envelope.Type {
	case dto.MessageTypePixel:
		// 帧必须携带数值 x/y 和字符串 color，缺一不可
		var frame struct {
			X     *int    `json:"x"`
			Y     *int    `json:"y"`
			Color *string `json:"color"`
		}
		if err := json.Unmarshal(envelope.Data, &frame); err != nil || frame.X == nil || frame.Y == nil || frame.Color == nil {
			c.log.WithField("payload", string(envelope.Data)).Warn("Dropping malformed pixel frame")
			return
		}
		c.store.SyncPixel(*frame.X, *frame.Y, *frame.Color)

	case dto.MessageTypeSnapshot:
		var snapshot dto.SnapshotDTO
		if err := json.Unmarshal(envelope.Data, &snapshot); err != nil {
			c.log.WithError(err).Warn("Dropping malformed snapshot message")
			return
		}
		c.store.ImportGrid(snapshot)
		c.log.WithField("cells", len(snapshot.Pixels)).Info("Canvas state imported from snapshot")

	case dto.MessageTypeError:
		c.log.WithField("payload", string(envelope.Data)).Warn("Server reported an error on the broadcast channel")

	default:
		c.log.WithField("type", envelope.Type).Warn("Dropping broadcast message of unknown type")
	}
}

// scheduleReconnect 在固定延迟后重新拨号，除非重连被抑制
func (c *Channel) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.suppressed {
		return
	}
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
	}
	c.reconnectTimer = time.AfterFunc(c.reconnectDelay, func() {
		c.mu.Lock()
		suppressed := c.suppressed
		c.mu.Unlock()
		if suppressed {
			return
		}
		c.log.Info("Attempting broadcast channel reconnect")
		_ = c.dial()
	})
}

// Disconnect 由调用方发起的关闭：抑制自动重连并取消挂起的重连定时器
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.suppressed = true
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}
	c.log.Info("Broadcast channel disconnected by caller")
}

// IsConnected 返回连接是否处于 CONNECTED 状态
func (c *Channel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
