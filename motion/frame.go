package motion

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// FramesPerSecond 采样上限频率
	FramesPerSecond = 60
	// DefaultFrameInterval ≈16.6ms
	DefaultFrameInterval = time.Second / FramesPerSecond
)

// FrameLoop 以固定上限频率执行回调，与宿主刷新率无关
// 距上次执行不足 interval 的 Step 会被跳过
type FrameLoop struct {
	interval time.Duration
	clock    Clock

	tick    func(now time.Time)
	last    time.Time
	fired   bool
	running atomic.Bool
	skipped atomic.Int64
	frames  atomic.Int64

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewFrameLoop interval ≤ 0 时使用 DefaultFrameInterval
func NewFrameLoop(interval time.Duration, clock Clock) *FrameLoop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &FrameLoop{
		interval: interval,
		clock:    clock,
		stopCh:   make(chan struct{}),
	}
}

// Start 设置回调并进入运行状态；已运行或已停止返回 false
func (l *FrameLoop) Start(tick func(now time.Time)) bool {
	select {
	case <-l.stopCh:
		return false
	default:
	}
	if l.running.Load() {
		return false
	}
	l.tick = tick
	l.running.Store(true)
	return true
}

// Stop 同步生效：之后的 Step 不再执行回调；可重复调用
func (l *FrameLoop) Stop() {
	l.running.Store(false)
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Step 宿主每帧调用一次；返回本次是否执行了回调
func (l *FrameLoop) Step() bool {
	if !l.running.Load() || l.tick == nil {
		return false
	}
	now := l.clock.Now()
	if l.fired && now.Sub(l.last) < l.interval {
		l.skipped.Add(1)
		return false
	}
	l.fired = true
	l.last = now
	l.frames.Add(1)
	l.tick(now)
	return true
}

// Run 用 time.Ticker 模拟宿主帧，直到 Stop 或 ctx 结束
func (l *FrameLoop) Run(ctx context.Context, hostInterval time.Duration) {
	if hostInterval <= 0 {
		hostInterval = l.interval
	}
	ticker := time.NewTicker(hostInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.Step()
		}
	}
}

// Done 停止后关闭
func (l *FrameLoop) Done() <-chan struct{} { return l.stopCh }

func (l *FrameLoop) Running() bool { return l.running.Load() }

// Interval 帧间隔
func (l *FrameLoop) Interval() time.Duration { return l.interval }

// Skipped 因节流被跳过的 Step 次数
func (l *FrameLoop) Skipped() int64 { return l.skipped.Load() }

// Frames 实际执行回调的次数
func (l *FrameLoop) Frames() int64 { return l.frames.Load() }
