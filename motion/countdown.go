package motion

import "time"

// CountdownKind 倒计时用途
type CountdownKind string

const (
	CountdownNone    CountdownKind = ""
	CountdownStart   CountdownKind = "start"
	CountdownMistake CountdownKind = "mistake"
)

const countdownStep = time.Second

// Countdown 按秒递减的倒计时，结束回调至多执行一次
type Countdown struct {
	timers    *TimerQueue
	handle    TimerHandle
	kind      CountdownKind
	remaining int
	onStep    func(remaining int)
	onFinish  func()
}

// NewCountdown 基于 TimerQueue 创建
func NewCountdown(timers *TimerQueue) *Countdown {
	return &Countdown{timers: timers}
}

// Begin 开始新的倒计时，会先取消正在进行的一个
// seconds ≤ 0 时立即执行 onFinish
func (c *Countdown) Begin(kind CountdownKind, seconds int, onStep func(int), onFinish func()) {
	c.Cancel()
	if seconds <= 0 {
		if onFinish != nil {
			onFinish()
		}
		return
	}
	c.kind = kind
	c.remaining = seconds
	c.onStep = onStep
	c.onFinish = onFinish
	c.handle = c.timers.Schedule(countdownStep, c.tick)
}

// Cancel 取消倒计时，onFinish 不会再被调用
func (c *Countdown) Cancel() bool {
	if c.handle == 0 {
		return false
	}
	c.timers.Cancel(c.handle)
	c.clear()
	return true
}

// Active 是否有倒计时在进行
func (c *Countdown) Active() bool { return c.handle != 0 }

// Remaining 剩余秒数
func (c *Countdown) Remaining() int { return c.remaining }

// Kind 当前倒计时用途，无倒计时为 CountdownNone
func (c *Countdown) Kind() CountdownKind { return c.kind }

func (c *Countdown) tick() {
	c.remaining--
	if c.remaining > 0 {
		if c.onStep != nil {
			c.onStep(c.remaining)
		}
		c.handle = c.timers.Schedule(countdownStep, c.tick)
		return
	}
	finish := c.onFinish
	c.clear()
	if finish != nil {
		finish()
	}
}

func (c *Countdown) clear() {
	c.handle = 0
	c.kind = CountdownNone
	c.remaining = 0
	c.onStep = nil
	c.onFinish = nil
}
