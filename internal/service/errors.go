package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username or email already exists")
	ErrCanvasNotFound       = errors.New("canvas not found")
	ErrForbidden            = errors.New("operation requires canvas admin")
	ErrInvalidRequest       = errors.New("invalid placement request")
	ErrSessionNotActive     = errors.New("canvas session is not active")
	ErrCooldownActive       = errors.New("placement cooldown active")
	ErrPublishFailed        = errors.New("failed to publish placement event")
	ErrInternalServer       = errors.New("internal server error")
)

// CooldownError 携带剩余冷却时长的 ErrCooldownActive。
// 这是一次正常的准入控制拒绝，不是故障。
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("placement cooldown active: %s remaining", e.Remaining.Round(time.Second))
}

// Is 使 errors.Is(err, ErrCooldownActive) 成立。
func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

// RetryAfterSeconds 返回向客户端提示的等待秒数，向上取整且至少为 1。
func (e *CooldownError) RetryAfterSeconds() int {
	secs := int((e.Remaining + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
