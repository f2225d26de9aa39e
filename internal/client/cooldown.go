package client

// cooldownTimer 是放置冷却的本地计时器。
// 状态机: READY --Start--> COOLING(N) --Tick xN--> READY。
// 以 tick 为单位推进，与真实时间解耦，方便测试。
type cooldownTimer struct {
	duration  int // 每次放置后的冷却 tick 数
	remaining int
}

func newCooldownTimer(duration int) cooldownTimer {
	if duration < 0 {
		duration = 0
	}
	return cooldownTimer{duration: duration}
}

// Start 重置计时器到完整冷却时长
func (t *cooldownTimer) Start() {
	t.remaining = t.duration
}

// Tick 推进一个时间单位，剩余量不会低于零
func (t *cooldownTimer) Tick() {
	if t.remaining > 0 {
		t.remaining--
	}
}

// Active 返回是否仍在冷却中
func (t *cooldownTimer) Active() bool { return t.remaining > 0 }

// Remaining 返回剩余 tick 数
func (t *cooldownTimer) Remaining() int { return t.remaining }
