package motion

import "math"

// KeyboardSource 提供当前按下的物理键码（如 "ArrowLeft"、"KeyJ"）
type KeyboardSource interface {
	HeldCodes() []string
}

// GamepadSnapshot 手柄某一时刻的按钮与摇杆读数
type GamepadSnapshot struct {
	Buttons []bool
	Axes    []float64
}

// GamepadSource 按槽位返回手柄快照；ok=false 表示未连接
type GamepadSource interface {
	Gamepad(slot int) (GamepadSnapshot, bool)
}

// AxisBand 方向轴的一个量化区间 [Min, Max)
type AxisBand struct {
	Min, Max float64
	Keys     []MoveKey
}

// DefaultAxisBands 标准手柄方向轴（axes[9]）的量化区间，区间之间的空隙视为死区
var DefaultAxisBands = []AxisBand{
	{Min: -1.1, Max: -0.9, Keys: []MoveKey{KeyUp}},
	{Min: -0.8, Max: -0.6, Keys: []MoveKey{KeyUp, KeyRight}},
	{Min: -0.5, Max: -0.4, Keys: []MoveKey{KeyRight}},
	{Min: -0.2, Max: -0.1, Keys: []MoveKey{KeyDown, KeyRight}},
	{Min: 0.1, Max: 0.2, Keys: []MoveKey{KeyDown}},
	{Min: 0.4, Max: 0.5, Keys: []MoveKey{KeyDown, KeyLeft}},
	{Min: 0.7, Max: 0.8, Keys: []MoveKey{KeyLeft}},
	{Min: 0.9, Max: 1.1, Keys: []MoveKey{KeyUp, KeyLeft}},
}

// DefaultKeyBindings 键盘键码 → 通道
func DefaultKeyBindings() map[string]MoveKey {
	return map[string]MoveKey{
		"ArrowUp":    KeyUp,
		"KeyW":       KeyUp,
		"ArrowDown":  KeyDown,
		"KeyS":       KeyDown,
		"ArrowLeft":  KeyLeft,
		"KeyA":       KeyLeft,
		"ArrowRight": KeyRight,
		"KeyD":       KeyRight,
		"KeyJ":       KeyAttack1,
		"KeyI":       KeyAttack2,
		"KeyK":       KeyAttack3,
		"KeyO":       KeyAttack4,
	}
}

// DefaultButtonBindings 手柄按钮下标 → 攻击通道
func DefaultButtonBindings() map[int]MoveKey {
	return map[int]MoveKey{
		0: KeyAttack1,
		3: KeyAttack2,
		1: KeyAttack3,
		2: KeyAttack4,
	}
}

const (
	// DefaultDirectionAxis 标准映射下合并方向轴的下标
	DefaultDirectionAxis = 9
	gamepadSlot          = 0
)

// Sampler 每帧把键盘与手柄读数合并成一个 KeyMap
type Sampler struct {
	keyboard KeyboardSource
	gamepad  GamepadSource

	keys    map[string]MoveKey
	buttons map[int]MoveKey
	axis    int
	bands   []AxisBand
}

// SamplerOption 调整 Sampler 的映射表
type SamplerOption func(*Sampler)

// WithKeyBindings 替换键盘映射表
func WithKeyBindings(b map[string]MoveKey) SamplerOption {
	return func(s *Sampler) {
		if len(b) > 0 {
			s.keys = b
		}
	}
}

// WithButtonBindings 替换手柄按钮映射表
func WithButtonBindings(b map[int]MoveKey) SamplerOption {
	return func(s *Sampler) {
		if len(b) > 0 {
			s.buttons = b
		}
	}
}

// WithDirectionAxis 指定方向轴下标
func WithDirectionAxis(idx int) SamplerOption {
	return func(s *Sampler) {
		if idx >= 0 {
			s.axis = idx
		}
	}
}

// NewSampler 任一输入源可以为 nil，视为无输入
func NewSampler(kb KeyboardSource, gp GamepadSource, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		keyboard: kb,
		gamepad:  gp,
		keys:     DefaultKeyBindings(),
		buttons:  DefaultButtonBindings(),
		axis:     DefaultDirectionAxis,
		bands:    DefaultAxisBands,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample 读取当前瞬时状态；各输入源只会置 true，不会清除其他源的按键
func (s *Sampler) Sample() KeyMap {
	var m KeyMap
	if s.keyboard != nil {
		for _, code := range s.keyboard.HeldCodes() {
			if k, ok := s.keys[code]; ok {
				m[k] = true
			}
		}
	}
	if s.gamepad == nil {
		return m
	}
	pad, ok := s.gamepad.Gamepad(gamepadSlot)
	if !ok {
		return m
	}
	for idx, k := range s.buttons {
		if idx >= 0 && idx < len(pad.Buttons) && pad.Buttons[idx] {
			m[k] = true
		}
	}
	if s.axis < len(pad.Axes) {
		for _, k := range quantizeAxis(s.bands, pad.Axes[s.axis]) {
			m[k] = true
		}
	}
	return m
}

// AxisToKeys 用默认区间量化方向轴数值；落在空隙中返回 nil
func AxisToKeys(v float64) []MoveKey {
	return quantizeAxis(DefaultAxisBands, v)
}

func quantizeAxis(bands []AxisBand, v float64) []MoveKey {
	if math.IsNaN(v) {
		return nil
	}
	for _, b := range bands {
		if v >= b.Min && v < b.Max {
			return b.Keys
		}
	}
	return nil
}
