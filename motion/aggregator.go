package motion

// Aggregator 保存当前 KeyMap，仅在状态变化时通知订阅者
type Aggregator struct {
	current KeyMap
	changes Emitter[KeyMap]
}

// NewAggregator 初始状态为全部松开
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Update 逐键比较；有差异则保存并广播副本，返回是否发生了变化
func (a *Aggregator) Update(m KeyMap) bool {
	if m == a.current {
		return false
	}
	a.current = m
	a.changes.Notify(m)
	return true
}

// Current 返回当前状态副本
func (a *Aggregator) Current() KeyMap { return a.current }

func (a *Aggregator) Subscribe(fn func(KeyMap)) ListenerID { return a.changes.Subscribe(fn) }

func (a *Aggregator) Unsubscribe(id ListenerID) bool { return a.changes.Unsubscribe(id) }
