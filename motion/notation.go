package motion

import (
	"errors"
	"fmt"
	"strings"
)

// Direction 八方向或中立
type Direction string

const (
	DirNeutral   Direction = "n"
	DirUp        Direction = "u"
	DirDown      Direction = "d"
	DirBack      Direction = "b"
	DirForward   Direction = "f"
	DirUpBack    Direction = "ub"
	DirUpForward Direction = "uf"
	DirDownBack  Direction = "db"
	DirDownFwd   Direction = "df"
)

// MoveToken 规范记法：方向部分 + 升序攻击数字，全空时为 "n"
type MoveToken string

// Neutral 所有输入松开
const Neutral MoveToken = "n"

// ErrInvalidMove 非规范记法
var ErrInvalidMove = errors.New("invalid move token")

// Translate 纯函数：KeyMap → MoveToken
func Translate(m KeyMap) MoveToken {
	tok := directionPart(m) + attackPart(m)
	if tok == "" {
		return Neutral
	}
	return MoveToken(tok)
}

// DirectionOf 只看方向通道
func DirectionOf(m KeyMap) Direction {
	if d := directionPart(m); d != "" {
		return Direction(d)
	}
	return DirNeutral
}

// 竖直在前、水平在后；同轴相反方向互相抵消
func directionPart(m KeyMap) string {
	var vertical, horizontal string
	switch {
	case m[KeyDown] && !m[KeyUp]:
		vertical = "d"
	case m[KeyUp] && !m[KeyDown]:
		vertical = "u"
	}
	switch {
	case m[KeyLeft] && !m[KeyRight]:
		horizontal = "b"
	case m[KeyRight] && !m[KeyLeft]:
		horizontal = "f"
	}
	return vertical + horizontal
}

func attackPart(m KeyMap) string {
	var sb strings.Builder
	for i, k := range AttackKeys {
		if m[k] {
			sb.WriteByte(byte('1' + i))
		}
	}
	return sb.String()
}

var directionPrefixes = []Direction{
	DirUpBack, DirUpForward, DirDownBack, DirDownFwd,
	DirUp, DirDown, DirBack, DirForward,
}

// split 拆出方向前缀与攻击部分
func (t MoveToken) split() (Direction, string) {
	s := string(t)
	if t == Neutral {
		return DirNeutral, ""
	}
	for _, d := range directionPrefixes {
		if strings.HasPrefix(s, string(d)) {
			return d, s[len(d):]
		}
	}
	return DirNeutral, s
}

// Direction 记法中的方向部分，无方向时为 "n"
func (t MoveToken) Direction() Direction {
	d, _ := t.split()
	return d
}

// Attack 记法中的攻击数字，可能为空
func (t MoveToken) Attack() string {
	_, a := t.split()
	return a
}

// ParseMoveToken 校验手写序列中的记法是否为 Translate 可能产出的规范形式
func ParseMoveToken(s string) (MoveToken, error) {
	tok := MoveToken(strings.ToLower(strings.TrimSpace(s)))
	if tok == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidMove)
	}
	if tok == Neutral {
		return tok, nil
	}
	_, attack := tok.split()
	prev := byte('0')
	for i := 0; i < len(attack); i++ {
		c := attack[i]
		if c < '1' || c > '4' {
			return "", fmt.Errorf("%w: %q", ErrInvalidMove, s)
		}
		if c <= prev {
			return "", fmt.Errorf("%w: %q attack digits must be ascending", ErrInvalidMove, s)
		}
		prev = c
	}
	return tok, nil
}
