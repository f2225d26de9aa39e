package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot 存储特定时间点某个画布的完整状态。
// 用于冷启动加载和断线重连时的状态恢复。
type Snapshot struct {
	ID        uint      `gorm:"primaryKey"`
	CanvasID  string    `gorm:"index;type:varchar(36);not null"`
	Data      string    `gorm:"type:longtext;not null"` // GridState 的 JSON 序列化
	CreatedAt time.Time `gorm:"index;not null"`
}

// ParseState 将 Snapshot 的 Data 字段解析为 GridState。
func (s *Snapshot) ParseState() (GridState, error) {
	var state GridState
	if s.Data == "" {
		return make(GridState), nil
	}
	if err := json.Unmarshal([]byte(s.Data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot data: %w", err)
	}
	if state == nil {
		return make(GridState), nil
	}
	return state, nil
}

// SetState 将 GridState 序列化到 Snapshot 的 Data 字段。
func (s *Snapshot) SetState(state GridState) error {
	if len(state) == 0 {
		s.Data = "{}"
		return nil
	}
	bytes, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal grid state: %w", err)
	}
	s.Data = string(bytes)
	return nil
}
