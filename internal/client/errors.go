package client

import (
	"errors"
	"fmt"
)

// 客户端侧的条件与错误。冷却和越界是正常的准入拒绝，
// 其余才是真正的失败。
var (
	// ErrCooldownActive 表示本地冷却尚未结束，放置被拒绝。
	// 这是准入控制的正常结果，调用方应将其展示为倒计时而不是失败。
	ErrCooldownActive = errors.New("cooldown active")

	// ErrOutOfBounds 表示坐标落在画布之外，放置是 no-op
	ErrOutOfBounds = errors.New("coordinates out of canvas bounds")

	// ErrSessionNotActive 表示画布会话不在 ACTIVE 状态，放置不会被接受
	ErrSessionNotActive = errors.New("canvas session is not active")

	// ErrUnauthorized 表示凭证缺失或已过期，应触发重新认证流程
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidRequest 表示服务端拒绝了请求负载
	ErrInvalidRequest = errors.New("invalid placement request")

	// ErrPublishFailed 表示服务端无法把事件交给骨干。
	// 宽松模式下本地推测值保留，由后续广播（或其缺席）来纠正。
	ErrPublishFailed = errors.New("placement publish failed")

	// ErrStoreClosed 表示 Store 已被调用方关闭
	ErrStoreClosed = errors.New("canvas store is closed")
)

// CooldownActiveError 携带剩余冷却时间的准入拒绝
type CooldownActiveError struct {
	RemainingTicks int
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active: %d ticks remaining", e.RemainingTicks)
}

// Is 使 errors.Is(err, ErrCooldownActive) 成立
func (e *CooldownActiveError) Is(target error) bool {
	return target == ErrCooldownActive
}
