package server

import (
	"context"
	"time"
)

// StartTicker 启动会话的帧循环（单线程推进），返回是否新启动
// 宿主以 pollInterval 轮询，FrameLoop 把实际执行频率限制在 FrameRate 以内
func (s *Session) StartTicker(ctx context.Context) bool {
	started := s.loop.Start(func(now time.Time) {
		start := time.Now()
		s.Tick(now)
		s.metrics.AddTick(time.Since(start).Nanoseconds())
	})
	if !started {
		return false
	}
	go s.loop.Run(ctx, s.pollInterval)
	return true
}

// StopTicker 停止帧循环；可重复调用
func (s *Session) StopTicker() {
	s.loop.Stop()
}

// Done 帧循环结束后关闭
func (s *Session) Done() <-chan struct{} { return s.loop.Done() }
