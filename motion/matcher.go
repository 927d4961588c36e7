package motion

// Phase 训练器阶段，决定是否消费输入
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// State 匹配进度与统计；Correct ≤ Total 恒成立
type State struct {
	CurrentIndex    int  `json:"currentIndex"`
	Total           int  `json:"total"`
	Correct         int  `json:"correct"`
	AwaitingRelease bool `json:"awaitingRelease"`
}

// Outcome 单个记法输入的匹配结果
type Outcome int

const (
	// OutcomeIgnored 未运行或等待松开期间的非中立输入
	OutcomeIgnored Outcome = iota
	// OutcomeReleased 等待松开时收到中立，恢复匹配
	OutcomeReleased
	// OutcomeAdvanced 命中当前位置，推进一格
	OutcomeAdvanced
	// OutcomeCompleted 完成整个序列
	OutcomeCompleted
	// OutcomeMistake 不匹配，进度归零
	OutcomeMistake
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeReleased:
		return "released"
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeCompleted:
		return "completed"
	case OutcomeMistake:
		return "mistake"
	default:
		return "unknown"
	}
}

// Matcher 序列匹配状态机；只在单一逻辑线程上调用
type Matcher struct {
	seq   Sequence
	phase Phase
	state State
}

// NewMatcher 以 idle 阶段创建
func NewMatcher(seq Sequence) *Matcher {
	return &Matcher{seq: seq.Clone()}
}

// Feed 消费一个记法；仅 running 阶段生效
func (m *Matcher) Feed(tok MoveToken) Outcome {
	if m.phase != PhaseRunning || len(m.seq.Moves) == 0 {
		return OutcomeIgnored
	}
	if m.state.AwaitingRelease {
		if tok != Neutral {
			return OutcomeIgnored
		}
		m.state.AwaitingRelease = false
		return OutcomeReleased
	}
	if tok != m.seq.Moves[m.state.CurrentIndex] {
		m.state.CurrentIndex = 0
		m.state.Total++
		return OutcomeMistake
	}
	if m.state.CurrentIndex < len(m.seq.Moves)-1 {
		m.state.CurrentIndex++
		return OutcomeAdvanced
	}
	m.state.Total++
	m.state.Correct++
	m.state.CurrentIndex = 0
	if !m.seq.StrictLoop {
		m.state.AwaitingRelease = true
	}
	return OutcomeCompleted
}

// Start idle → running，计数清零
func (m *Matcher) Start() bool {
	if m.phase != PhaseIdle {
		return false
	}
	m.state = State{}
	m.phase = PhaseRunning
	return true
}

// Pause running → paused，保留进度
func (m *Matcher) Pause() bool {
	if m.phase != PhaseRunning {
		return false
	}
	m.phase = PhasePaused
	return true
}

// Resume paused → running
func (m *Matcher) Resume() bool {
	if m.phase != PhasePaused {
		return false
	}
	m.phase = PhaseRunning
	return true
}

// Reset running/paused → running，计数与等待松开全部清零
func (m *Matcher) Reset() bool {
	if m.phase == PhaseIdle {
		return false
	}
	m.state = State{}
	m.phase = PhaseRunning
	return true
}

// Stop 任意阶段 → idle，计数清零；重复调用无副作用
func (m *Matcher) Stop() bool {
	changed := m.phase != PhaseIdle || m.state != State{}
	m.state = State{}
	m.phase = PhaseIdle
	return changed
}

// SetSequence 切换目标序列，隐含一次 Stop
func (m *Matcher) SetSequence(seq Sequence) {
	m.Stop()
	m.seq = seq.Clone()
}

func (m *Matcher) Phase() Phase { return m.phase }

func (m *Matcher) State() State { return m.state }

// Sequence 返回当前序列副本
func (m *Matcher) Sequence() Sequence { return m.seq.Clone() }

// Accuracy 当前正确率（整数百分比）
func (m *Matcher) Accuracy() int { return CalcAccuracy(m.state.Correct, m.state.Total) }

// CalcAccuracy 向下取整的百分比；total 为 0 时记为 100
func CalcAccuracy(correct, total int) int {
	if total <= 0 {
		return 100
	}
	return correct * 100 / total
}
