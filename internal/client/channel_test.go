package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evan-Lab/cloud-native/internal/domain"
	"github.com/Evan-Lab/cloud-native/internal/dto"
)

// wsTestServer 接受 WebSocket 连接并把服务端侧连接交给测试用例驱动。
type wsTestServer struct {
	srv   *httptest.Server
	conns chan *websocket.Conn
}

func newWSTestServer(t *testing.T) *wsTestServer {
	t.Helper()
	ts := &wsTestServer{conns: make(chan *websocket.Conn, 4)}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.conns <- conn
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *wsTestServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http")
}

// waitConn 等待客户端完成一次连接
func (ts *wsTestServer) waitConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-ts.conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for websocket connection")
		return nil
	}
}

func sendEnvelope(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	message, err := dto.NewEnvelope(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, message))
}

func newTestChannel(ts *wsTestServer, store *Store) *Channel {
	ch := NewChannel(ts.wsURL(), "test-token", store)
	ch.reconnectDelay = 50 * time.Millisecond
	return ch
}

func TestChannel_PixelFrameReachesStore(t *testing.T) {
	ts := newWSTestServer(t)
	store := NewStore("canvas-1", Config{Width: 100, Height: 100}, nil, nil)
	ch := newTestChannel(ts, store)

	require.NoError(t, ch.Connect())
	defer ch.Disconnect()
	serverConn := ts.waitConn(t)

	sendEnvelope(t, serverConn, dto.MessageTypePixel, dto.PixelFrame{X: 5, Y: 7, Color: "#EF4444"})

	assert.Eventually(t, func() bool {
		return store.GetColor(5, 7) == "#EF4444"
	}, time.Second, 10*time.Millisecond)
}

func TestChannel_MalformedFramesDropped(t *testing.T) {
	ts := newWSTestServer(t)
	store := NewStore("canvas-1", Config{Width: 100, Height: 100}, nil, nil)
	ch := newTestChannel(ts, store)

	require.NoError(t, ch.Connect())
	defer ch.Disconnect()
	serverConn := ts.waitConn(t)

	// x 是字符串、缺 color、纯垃圾：全部丢弃，连接不受影响
	malformed := [][]byte{
		[]byte(`{"type":"pixel","data":{"x":"a","y":2,"color":"#EF4444"}}`),
		[]byte(`{"type":"pixel","data":{"x":1,"y":2}}`),
		[]byte(`not even json`),
		[]byte(`{"type":"teleport","data":{}}`),
	}
	for _, message := range malformed {
		require.NoError(t, serverConn.WriteMessage(websocket.TextMessage, message))
	}

	// 之后的合法帧仍然被处理，证明读取循环还活着
	sendEnvelope(t, serverConn, dto.MessageTypePixel, dto.PixelFrame{X: 1, Y: 1, Color: "#3B82F6"})

	assert.Eventually(t, func() bool {
		return store.GetColor(1, 1) == "#3B82F6"
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, domain.DefaultColor, store.GetColor(1, 2), "畸形帧不得污染网格")
	assert.True(t, ch.IsConnected())
}

func TestChannel_SnapshotImportsGrid(t *testing.T) {
	ts := newWSTestServer(t)
	store := NewStore("canvas-1", Config{Width: 100, Height: 100}, nil, nil)
	ch := newTestChannel(ts, store)

	require.NoError(t, ch.Connect())
	defer ch.Disconnect()
	serverConn := ts.waitConn(t)

	sendEnvelope(t, serverConn, dto.MessageTypeSnapshot, dto.SnapshotDTO{
		Width:  100,
		Height: 100,
		Pixels: []dto.PixelDTO{
			{X: 0, Y: 0, Color: "#EF4444"},
			{X: 99, Y: 99, Color: "#000000"},
		},
	})

	assert.Eventually(t, func() bool {
		return store.GetColor(0, 0) == "#EF4444" && store.GetColor(99, 99) == "#000000"
	}, time.Second, 10*time.Millisecond)
}

func TestChannel_ReconnectsAfterUncleanClose(t *testing.T) {
	ts := newWSTestServer(t)
	store := NewStore("canvas-1", Config{Width: 100, Height: 100}, nil, nil)
	ch := newTestChannel(ts, store)

	require.NoError(t, ch.Connect())
	defer ch.Disconnect()
	serverConn := ts.waitConn(t)

	// 不发 close 帧直接断开底层连接，模拟网络故障
	require.NoError(t, serverConn.Close())

	assert.Eventually(t, func() bool {
		return !ch.IsConnected()
	}, time.Second, 10*time.Millisecond)

	// 固定延迟后自动重连
	reconnected := ts.waitConn(t)
	require.NotNil(t, reconnected)
	assert.Eventually(t, func() bool {
		return ch.IsConnected()
	}, time.Second, 10*time.Millisecond)
}

func TestChannel_CleanCloseDoesNotReconnect(t *testing.T) {
	ts := newWSTestServer(t)
	store := NewStore("canvas-1", Config{Width: 100, Height: 100}, nil, nil)
	ch := newTestChannel(ts, store)

	require.NoError(t, ch.Connect())
	serverConn := ts.waitConn(t)

	// 服务端正常关闭 (close frame)，客户端不应重连
	deadline := time.Now().Add(time.Second)
	require.NoError(t, serverConn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"), deadline))

	assert.Eventually(t, func() bool {
		return !ch.IsConnected()
	}, time.Second, 10*time.Millisecond)

	select {
	case <-ts.conns:
		t.Fatal("channel reconnected after a clean close")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestChannel_DisconnectSuppressesReconnect(t *testing.T) {
	ts := newWSTestServer(t)
	store := NewStore("canvas-1", Config{Width: 100, Height: 100}, nil, nil)
	ch := newTestChannel(ts, store)

	require.NoError(t, ch.Connect())
	ts.waitConn(t)

	ch.Disconnect()
	assert.False(t, ch.IsConnected())

	select {
	case <-ts.conns:
		t.Fatal("channel reconnected after caller-initiated disconnect")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestChannel_DialFailureSchedulesRetry(t *testing.T) {
	ts := newWSTestServer(t)
	store := NewStore("canvas-1", Config{Width: 100, Height: 100}, nil, nil)

	// 先关掉服务器，首次拨号必然失败
	badURL := ts.wsURL()
	ts.srv.Close()

	ch := NewChannel(badURL, "test-token", store)
	ch.reconnectDelay = 50 * time.Millisecond

	err := ch.Connect()
	require.Error(t, err)
	assert.False(t, ch.IsConnected())

	// 停止后台重试，避免测试间相互干扰
	ch.Disconnect()
}

func TestChannel_EnvelopeRoundTrip(t *testing.T) {
	// 信封编码应能被 handleMessage 的解析逻辑原样还原
	message, err := dto.NewEnvelope(dto.MessageTypePixel, dto.PixelFrame{X: 3, Y: 4, Color: "#10B981"})
	require.NoError(t, err)

	var envelope dto.WSEnvelope
	require.NoError(t, json.Unmarshal(message, &envelope))
	assert.Equal(t, dto.MessageTypePixel, envelope.Type)

	var frame dto.PixelFrame
	require.NoError(t, json.Unmarshal(envelope.Data, &frame))
	assert.Equal(t, dto.PixelFrame{X: 3, Y: 4, Color: "#10B981"}, frame)
}
