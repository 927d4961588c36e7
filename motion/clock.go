package motion

import (
	"sync"
	"time"
)

// Clock 时间源；测试中用 ManualClock 替换
type Clock interface {
	Now() time.Time
}

// SystemClock 单调时钟
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock 可手动推进的时间源
type ManualClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManualClock 从给定时间开始
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Advance 向前推进 d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set 直接设置当前时间
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
