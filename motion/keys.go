package motion

import (
	"fmt"
	"strings"
)

// MoveKey 抽象输入通道：四个方向 + 四个攻击键
type MoveKey uint8

const (
	KeyUp MoveKey = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyAttack1
	KeyAttack2
	KeyAttack3
	KeyAttack4

	// MoveKeyCount 通道总数
	MoveKeyCount = 8
)

var moveKeyNames = [MoveKeyCount]string{"up", "down", "left", "right", "1", "2", "3", "4"}

func (k MoveKey) String() string {
	if int(k) < MoveKeyCount {
		return moveKeyNames[k]
	}
	return fmt.Sprintf("MoveKey(%d)", uint8(k))
}

// ParseMoveKey 将 "up"/"left"/"1" 等名称解析为 MoveKey
func ParseMoveKey(name string) (MoveKey, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range moveKeyNames {
		if s == n {
			return MoveKey(i), nil
		}
	}
	return 0, fmt.Errorf("unknown move key %q", name)
}

// AttackKeys 按数字升序排列的攻击通道
var AttackKeys = [4]MoveKey{KeyAttack1, KeyAttack2, KeyAttack3, KeyAttack4}

// KeyMap 某一时刻所有通道的按下状态；定长数组保证始终完整
type KeyMap [MoveKeyCount]bool

// With 返回设置了若干按键的副本
func (m KeyMap) With(keys ...MoveKey) KeyMap {
	for _, k := range keys {
		if int(k) < MoveKeyCount {
			m[k] = true
		}
	}
	return m
}

// Held 返回当前按下的通道
func (m KeyMap) Held() []MoveKey {
	var out []MoveKey
	for i, v := range m {
		if v {
			out = append(out, MoveKey(i))
		}
	}
	return out
}

func (m KeyMap) String() string {
	held := m.Held()
	if len(held) == 0 {
		return "{}"
	}
	parts := make([]string, len(held))
	for i, k := range held {
		parts[i] = k.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
