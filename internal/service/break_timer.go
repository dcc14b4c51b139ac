package service

import (
	"sync"
	"time"
)

// breakTimers 休息自动截止定时器注册表。
// 以 (subject_id, work_date) 为键；每键至多一个待触发定时器。
// 取消是幂等的：对不存在的键调用 Cancel 直接返回。
// 定时器触发后由回调方再次确认记录状态——已关闭的休息不会被重复关闭
// （版本号条件更新保证），这里只负责调度。
type breakTimers struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newBreakTimers() *breakTimers {
	return &breakTimers{timers: make(map[string]*time.Timer)}
}

// Arm 为指定键安排一次延迟回调；同键已有定时器时先取消旧的
func (t *breakTimers) Arm(key string, delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.timers[key]; ok {
		old.Stop()
	}

	t.timers[key] = time.AfterFunc(delay, func() {
		t.remove(key)
		fn()
	})
}

// Cancel 取消指定键的待触发定时器；无定时器时为 no-op
func (t *breakTimers) Cancel(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, ok := t.timers[key]; ok {
		timer.Stop()
		delete(t.timers, key)
	}
}

func (t *breakTimers) remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.timers, key)
}
