package dto

import "github.com/Evan-Lab/cloud-native/internal/domain"

// PlacementRequest 表示客户端提交的像素放置请求。
// X/Y 使用指针以便区分 "缺失" 和合法的 0 坐标。
type PlacementRequest struct {
	X        *int   `json:"x" binding:"required"`
	Y        *int   `json:"y" binding:"required"`
	Color    string `json:"color" binding:"required"`
	CanvasID string `json:"canvasId" binding:"required"`
}

// PixelFrame 是广播通道上传输的单条消息。
// 任何形状不符的入站消息都会被订阅端丢弃。
type PixelFrame struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

// PixelDTO 是快照中的一个已设置单元格。
type PixelDTO struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

// SnapshotDTO 是冷启动时发送给客户端的完整画布状态。
type SnapshotDTO struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Pixels []PixelDTO `json:"pixels"`
}

// NewSnapshotDTO 将稀疏的 GridState 转换为快照传输格式。
// 网格 key 只由 GridState.Set 写入，解析不了的条目直接跳过。
func NewSnapshotDTO(width, height int, state domain.GridState) SnapshotDTO {
	pixels := make([]PixelDTO, 0, len(state))
	for key, color := range state {
		x, y, err := domain.ParseCellKey(key)
		if err != nil {
			continue
		}
		pixels = append(pixels, PixelDTO{X: x, Y: y, Color: color})
	}
	return SnapshotDTO{Width: width, Height: height, Pixels: pixels}
}

// ErrorDTO 表示发送给客户端的错误消息。
type ErrorDTO struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"` // 秒，仅冷却拒绝时填写
}
