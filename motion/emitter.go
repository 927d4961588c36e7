package motion

// ListenerID 订阅句柄，用于取消订阅
type ListenerID uint64

type listener[T any] struct {
	id ListenerID
	fn func(T)
}

// Emitter 组件私有的订阅者列表，按注册顺序通知
type Emitter[T any] struct {
	next      ListenerID
	listeners []listener[T]
}

// Subscribe 注册回调并返回句柄
func (e *Emitter[T]) Subscribe(fn func(T)) ListenerID {
	e.next++
	e.listeners = append(e.listeners, listener[T]{id: e.next, fn: fn})
	return e.next
}

// Unsubscribe 移除回调；句柄不存在时返回 false
func (e *Emitter[T]) Unsubscribe(id ListenerID) bool {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Notify 通知全部订阅者；回调中增删订阅不影响本轮
func (e *Emitter[T]) Notify(v T) {
	snapshot := e.listeners
	for _, l := range snapshot {
		l.fn(v)
	}
}

// Len 当前订阅数
func (e *Emitter[T]) Len() int { return len(e.listeners) }
