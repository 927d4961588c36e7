package server

import (
	"sync/atomic"
)

// SessionMetrics 记录会话运行期的关键指标（用于监控与调试）
type SessionMetrics struct {
	TickCount         int64 // 实际执行的帧数
	InputsAccepted    int64 // 进入队列的入站消息数
	BadMessages       int64 // 解析失败被丢弃的消息数
	ChanFullDiscarded int64 // 因通道满被丢弃的消息数
	KeyChanges        int64 // KeyMap 变化次数
	Moves             int64 // 产出的记法数
	Mistakes          int64 // 失误次数
	Completions       int64 // 完成序列次数
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
}

func (m *SessionMetrics) IncAccepted()          { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *SessionMetrics) IncBadMessage()        { atomic.AddInt64(&m.BadMessages, 1) }
func (m *SessionMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *SessionMetrics) IncKeyChange()         { atomic.AddInt64(&m.KeyChanges, 1) }
func (m *SessionMetrics) IncMove()              { atomic.AddInt64(&m.Moves, 1) }
func (m *SessionMetrics) IncMistake()           { atomic.AddInt64(&m.Mistakes, 1) }
func (m *SessionMetrics) IncCompletion()        { atomic.AddInt64(&m.Completions, 1) }
func (m *SessionMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *SessionMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"inputs_accepted":     atomic.LoadInt64(&m.InputsAccepted),
		"bad_messages":        atomic.LoadInt64(&m.BadMessages),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"key_changes":         atomic.LoadInt64(&m.KeyChanges),
		"moves":               atomic.LoadInt64(&m.Moves),
		"mistakes":            atomic.LoadInt64(&m.Mistakes),
		"completions":         atomic.LoadInt64(&m.Completions),
		"avg_tick_ms":         avgMs,
	}
}
