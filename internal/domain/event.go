package domain

import (
	"strings"
	"time"
)

// PlacementEvent 表示一次被服务端接受的像素放置。
// 事件一经发布不可变；画布状态是事件日志的压缩投影。
// 同一单元格的赢家由事件到达顺序决定 (last-writer-wins)。
type PlacementEvent struct {
	ID          uint      `gorm:"primaryKey"`
	CanvasID    string    `gorm:"index;type:varchar(36);not null"`
	X           int       `gorm:"not null"`
	Y           int       `gorm:"not null"`
	Color       string    `gorm:"type:varchar(16);not null"`
	AuthorID    uint      `gorm:"index;not null"`
	SubmittedAt time.Time `gorm:"index;not null"` // 服务端接受时刻，不信任客户端时钟
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// IsErase 表示该事件是否把单元格恢复为默认色。
// 和 GridState.Set 一样不区分大小写，保证擦除语义一致。
func (e *PlacementEvent) IsErase() bool {
	return strings.EqualFold(e.Color, DefaultColor)
}
