package dto

import "encoding/json"

// WebSocket 消息类型
const (
	MessageTypeSnapshot = "snapshot"
	MessageTypePixel    = "pixel"
	MessageTypeError    = "error"
)

// WSEnvelope 是 WebSocket 连接上所有下行消息的统一信封。
// Data 的具体结构由 Type 决定：snapshot -> SnapshotDTO, pixel -> PixelFrame。
type WSEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope 构造一个信封并序列化 payload
func NewEnvelope(msgType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSEnvelope{Type: msgType, Data: data})
}
