package motion

// Movement 串联 Aggregator 与 Translate：每次按键状态变化产出一个 MoveToken
type Movement struct {
	inputs *Aggregator
	moves  Emitter[MoveToken]
	sub    ListenerID
	last   MoveToken
}

// NewMovement 创建并挂接到内部 Aggregator
func NewMovement() *Movement {
	mv := &Movement{inputs: NewAggregator(), last: Neutral}
	mv.sub = mv.inputs.Subscribe(mv.handleInputChange)
	return mv
}

// ChangeKeys 每帧调用；未变化时不会产生任何通知
func (mv *Movement) ChangeKeys(m KeyMap) bool {
	return mv.inputs.Update(m)
}

// Last 最近一次产出的记法
func (mv *Movement) Last() MoveToken { return mv.last }

// Keys 当前聚合后的按键状态
func (mv *Movement) Keys() KeyMap { return mv.inputs.Current() }

func (mv *Movement) SubscribeMoves(fn func(MoveToken)) ListenerID { return mv.moves.Subscribe(fn) }

func (mv *Movement) UnsubscribeMoves(id ListenerID) bool { return mv.moves.Unsubscribe(id) }

// Close 与 Aggregator 解除挂接，之后 ChangeKeys 不再产出记法
func (mv *Movement) Close() {
	mv.inputs.Unsubscribe(mv.sub)
}

func (mv *Movement) handleInputChange(m KeyMap) {
	mv.last = Translate(m)
	mv.moves.Notify(mv.last)
}
