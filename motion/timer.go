package motion

import "time"

// TimerHandle 延迟任务句柄；0 表示无效
type TimerHandle uint64

type pendingTimer struct {
	handle TimerHandle
	due    time.Time
	fn     func()
}

// TimerQueue 一次性可取消的延迟任务，由拥有者在帧循环中 Advance 驱动
type TimerQueue struct {
	clock   Clock
	next    TimerHandle
	pending []pendingTimer
}

// NewTimerQueue clock 为 nil 时使用系统时钟
func NewTimerQueue(clock Clock) *TimerQueue {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TimerQueue{clock: clock}
}

// Schedule delay 之后执行 fn，至多一次
func (q *TimerQueue) Schedule(delay time.Duration, fn func()) TimerHandle {
	q.next++
	q.pending = append(q.pending, pendingTimer{
		handle: q.next,
		due:    q.clock.Now().Add(delay),
		fn:     fn,
	})
	return q.next
}

// Cancel 取消尚未执行的任务；已执行或不存在返回 false
func (q *TimerQueue) Cancel(h TimerHandle) bool {
	for i, t := range q.pending {
		if t.handle == h {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Advance 按到期顺序执行所有已到期任务，返回执行数
// 回调中新安排的任务若同样已到期，会在本轮继续执行
func (q *TimerQueue) Advance(now time.Time) int {
	fired := 0
	for {
		idx := -1
		for i, t := range q.pending {
			if t.due.After(now) {
				continue
			}
			if idx < 0 || t.due.Before(q.pending[idx].due) {
				idx = i
			}
		}
		if idx < 0 {
			return fired
		}
		t := q.pending[idx]
		// 先移除再执行，保证至多一次
		q.pending = append(q.pending[:idx], q.pending[idx+1:]...)
		t.fn()
		fired++
	}
}

// Pending 尚未执行的任务数
func (q *TimerQueue) Pending() int { return len(q.pending) }

// Clear 丢弃全部任务
func (q *TimerQueue) Clear() { q.pending = nil }
