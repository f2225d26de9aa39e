package domain

import "time"

// DefaultCooldown 是同一用户在同一画布上连续放置之间的最小间隔。
// 管理员不受此限制。
const DefaultCooldown = 35 * time.Second

// SessionStatus 表示画布会话的状态。
// 只有 ACTIVE 状态的画布才接受像素放置。
type SessionStatus string

const (
	SessionPending SessionStatus = "PENDING"
	SessionActive  SessionStatus = "ACTIVE"
	SessionPaused  SessionStatus = "PAUSED"
	SessionEnded   SessionStatus = "ENDED"
)

// Canvas 表示一个共享像素画布实例。
// ID 是不透明的字符串 (uuid)，与外部协作者交换时使用。
type Canvas struct {
	ID        string        `gorm:"primaryKey;type:varchar(36)"`
	AdminID   uint          `gorm:"index;not null"`      // 创建者，放置像素时绕过冷却
	Name      string        `gorm:"type:varchar(191);not null"`
	Width     int           `gorm:"not null"`
	Height    int           `gorm:"not null"`
	Status    SessionStatus `gorm:"type:varchar(16);not null;default:'PENDING'"`
	StartDate time.Time     `gorm:"index"`
	EndDate   time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// InBounds 检查坐标是否在画布范围内。
func (c *Canvas) InBounds(x, y int) bool {
	return x >= 0 && x < c.Width && y >= 0 && y < c.Height
}

// IsActive 表示画布当前是否接受放置。
func (c *Canvas) IsActive() bool {
	return c.Status == SessionActive
}
