package motion

// TrainerConfig 倒计时长度（秒），0 表示关闭
type TrainerConfig struct {
	CooldownSeconds       int `json:"cooldownSeconds"`
	StartCountdownSeconds int `json:"startCountdownSeconds"`
}

// DefaultTrainerConfig 失误冷却 3 秒，开始前倒数 3 秒
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{CooldownSeconds: 3, StartCountdownSeconds: 3}
}

// EventKind 训练器对外事件类型
type EventKind string

const (
	EventMove      EventKind = "move"
	EventAdvance   EventKind = "advance"
	EventComplete  EventKind = "complete"
	EventMistake   EventKind = "mistake"
	EventRelease   EventKind = "release"
	EventCountdown EventKind = "countdown"
	EventPhase     EventKind = "phase"
	EventSequence  EventKind = "sequence"
)

// Event 训练器事件；Remaining 为 0 的 EventCountdown 表示倒计时结束
type Event struct {
	Kind      EventKind
	Move      MoveToken
	Phase     Phase
	State     State
	Countdown CountdownKind
	Remaining int
	Sequence  string
}

// CountdownView 渲染用倒计时信息
type CountdownView struct {
	Kind      CountdownKind `json:"kind"`
	Remaining int           `json:"remaining"`
}

// Snapshot 渲染层只读视图；Index 在 idle 时为 -1
type Snapshot struct {
	Sequence        Sequence       `json:"sequence"`
	Phase           string         `json:"phase"`
	Index           int            `json:"index"`
	Correct         int            `json:"correct"`
	Total           int            `json:"total"`
	Accuracy        int            `json:"accuracy"`
	AwaitingRelease bool           `json:"awaitingRelease"`
	Countdown       *CountdownView `json:"countdown,omitempty"`
}

// Trainer 控制面：start/pause/resume/reset/stop/selectSequence
// 失误冷却期间由 Trainer 暂停 Matcher，冷却结束后恢复
type Trainer struct {
	catalog   *Catalog
	matcher   *Matcher
	countdown *Countdown
	cfg       TrainerConfig
	events    Emitter[Event]
}

// NewTrainer 默认选中目录中的第一个序列
func NewTrainer(catalog *Catalog, timers *TimerQueue, cfg TrainerConfig) *Trainer {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	first, _ := catalog.First()
	return &Trainer{
		catalog:   catalog,
		matcher:   NewMatcher(first),
		countdown: NewCountdown(timers),
		cfg:       cfg,
	}
}

func (t *Trainer) Subscribe(fn func(Event)) ListenerID { return t.events.Subscribe(fn) }

func (t *Trainer) Unsubscribe(id ListenerID) bool { return t.events.Unsubscribe(id) }

// Configure 更新倒计时长度，对下一次倒计时生效
func (t *Trainer) Configure(cfg TrainerConfig) {
	if cfg.CooldownSeconds < 0 {
		cfg.CooldownSeconds = 0
	}
	if cfg.StartCountdownSeconds < 0 {
		cfg.StartCountdownSeconds = 0
	}
	t.cfg = cfg
}

func (t *Trainer) Config() TrainerConfig { return t.cfg }

// Start idle → running；配置了开始倒数时先保持暂停
func (t *Trainer) Start() bool {
	if !t.matcher.Start() {
		return false
	}
	if t.cfg.StartCountdownSeconds > 0 {
		t.matcher.Pause()
		t.emitPhase()
		t.beginCountdown(CountdownStart, t.cfg.StartCountdownSeconds)
		return true
	}
	t.emitPhase()
	return true
}

// Pause 同时取消进行中的倒计时
func (t *Trainer) Pause() bool {
	cancelled := t.cancelCountdown()
	paused := t.matcher.Pause()
	if paused {
		t.emitPhase()
	}
	return paused || cancelled
}

// Resume 倒计时进行中时由倒计时负责恢复，这里返回 false
func (t *Trainer) Resume() bool {
	if t.countdown.Active() {
		return false
	}
	if !t.matcher.Resume() {
		return false
	}
	t.emitPhase()
	return true
}

// Reset running/paused → running，计数清零
func (t *Trainer) Reset() bool {
	t.cancelCountdown()
	if !t.matcher.Reset() {
		return false
	}
	t.emitPhase()
	return true
}

// Stop 任意阶段 → idle
func (t *Trainer) Stop() bool {
	cancelled := t.cancelCountdown()
	stopped := t.matcher.Stop()
	if stopped {
		t.emitPhase()
	}
	return stopped || cancelled
}

// SelectSequence 切换序列，隐含 Stop
func (t *Trainer) SelectSequence(id string) error {
	seq, err := t.catalog.Get(id)
	if err != nil {
		return err
	}
	t.cancelCountdown()
	t.matcher.SetSequence(seq)
	t.events.Notify(Event{Kind: EventSequence, Sequence: seq.ID, Phase: t.matcher.Phase()})
	return nil
}

// HandleMove Movement 的订阅回调
func (t *Trainer) HandleMove(tok MoveToken) Outcome {
	t.events.Notify(Event{Kind: EventMove, Move: tok, Phase: t.matcher.Phase()})
	out := t.matcher.Feed(tok)
	ev := Event{Move: tok, Phase: t.matcher.Phase(), State: t.matcher.State()}
	switch out {
	case OutcomeAdvanced:
		ev.Kind = EventAdvance
	case OutcomeCompleted:
		ev.Kind = EventComplete
	case OutcomeReleased:
		ev.Kind = EventRelease
	case OutcomeMistake:
		ev.Kind = EventMistake
	default:
		return out
	}
	t.events.Notify(ev)
	if out == OutcomeMistake && t.cfg.CooldownSeconds > 0 {
		t.matcher.Pause()
		t.beginCountdown(CountdownMistake, t.cfg.CooldownSeconds)
	}
	return out
}

func (t *Trainer) Phase() Phase { return t.matcher.Phase() }

func (t *Trainer) State() State { return t.matcher.State() }

func (t *Trainer) Sequence() Sequence { return t.matcher.Sequence() }

func (t *Trainer) Catalog() *Catalog { return t.catalog }

// Snapshot 渲染层视图
func (t *Trainer) Snapshot() Snapshot {
	st := t.matcher.State()
	snap := Snapshot{
		Sequence:        t.matcher.Sequence(),
		Phase:           t.matcher.Phase().String(),
		Index:           st.CurrentIndex,
		Correct:         st.Correct,
		Total:           st.Total,
		Accuracy:        CalcAccuracy(st.Correct, st.Total),
		AwaitingRelease: st.AwaitingRelease,
	}
	if t.matcher.Phase() == PhaseIdle {
		snap.Index = -1
	}
	if t.countdown.Active() {
		snap.Countdown = &CountdownView{Kind: t.countdown.Kind(), Remaining: t.countdown.Remaining()}
	}
	return snap
}

func (t *Trainer) beginCountdown(kind CountdownKind, seconds int) {
	t.events.Notify(Event{Kind: EventCountdown, Countdown: kind, Remaining: seconds, Phase: t.matcher.Phase()})
	t.countdown.Begin(kind, seconds,
		func(remaining int) {
			t.events.Notify(Event{Kind: EventCountdown, Countdown: kind, Remaining: remaining, Phase: t.matcher.Phase()})
		},
		func() {
			t.matcher.Resume()
			t.events.Notify(Event{Kind: EventCountdown, Countdown: kind, Phase: t.matcher.Phase()})
			t.emitPhase()
		})
}

func (t *Trainer) cancelCountdown() bool {
	return t.countdown.Cancel()
}

func (t *Trainer) emitPhase() {
	t.events.Notify(Event{Kind: EventPhase, Phase: t.matcher.Phase(), State: t.matcher.State()})
}
