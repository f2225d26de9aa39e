package hub

import (
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evan-Lab/cloud-native/internal/repository/mocks"
	"github.com/Evan-Lab/cloud-native/internal/service"
)

func newTestHub() *Hub {
	snapshotService := service.NewSnapshotService(
		new(mocks.SnapshotRepository),
		new(mocks.StateRepository),
		new(mocks.EventRepository),
	)
	// 测试不经过 registerClient，不会建立真正的 Redis 订阅
	return NewHub(snapshotService, redis.NewClient(&redis.Options{}), "test")
}

func TestHub_UnregisterClosesSendChannelWithPendingFrame(t *testing.T) {
	h := newTestHub()
	client := NewClient(h, nil, "canvas-1", 7, 100, 100)

	h.canvasesMu.Lock()
	h.canvases["canvas-1"] = map[*Client]bool{client: true}
	h.canvasesMu.Unlock()

	// 缓冲中残留一帧时通道也必须被关闭，WritePump 排空后才看到关闭
	client.send <- []byte(`{"type":"pixel"}`)

	h.unregisterClient(client)

	pending, ok := <-client.send
	require.True(t, ok, "残留帧应仍可读取")
	assert.JSONEq(t, `{"type":"pixel"}`, string(pending))

	_, ok = <-client.send
	assert.False(t, ok, "send 通道应已关闭")

	h.canvasesMu.RLock()
	_, exists := h.canvases["canvas-1"]
	h.canvasesMu.RUnlock()
	assert.False(t, exists, "空画布应从 Hub 移除")
}

func TestHub_UnregisterUnknownClientIsNoOp(t *testing.T) {
	h := newTestHub()
	client := NewClient(h, nil, "canvas-1", 7, 100, 100)

	// 从未注册的客户端: 不关闭通道，不 panic
	h.unregisterClient(client)

	select {
	case <-client.send:
		t.Fatal("send 通道不应被关闭或写入")
	default:
	}
}
