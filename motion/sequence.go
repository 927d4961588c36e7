package motion

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownSequence 目录中不存在该序列
	ErrUnknownSequence = errors.New("unknown sequence")
	// ErrEmptySequence 序列没有任何动作
	ErrEmptySequence = errors.New("empty sequence")
)

// Sequence 目标序列；StrictLoop=false 时完成后需回到中立才能重新开始
type Sequence struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Moves      []MoveToken `json:"moves"`
	StrictLoop bool        `json:"strictLoop"`
}

// Len 动作个数
func (s Sequence) Len() int { return len(s.Moves) }

// Validate 检查 ID 与每个动作的记法
func (s Sequence) Validate() error {
	if s.ID == "" {
		return errors.New("sequence id is empty")
	}
	if len(s.Moves) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptySequence, s.ID)
	}
	for i, m := range s.Moves {
		if _, err := ParseMoveToken(string(m)); err != nil {
			return fmt.Errorf("sequence %s move %d: %w", s.ID, i, err)
		}
	}
	return nil
}

// ParseMoves 解析以逗号或空白分隔的记法列表，如 "b, n, b, db"
func ParseMoves(s string) ([]MoveToken, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]MoveToken, 0, len(fields))
	for _, f := range fields {
		tok, err := ParseMoveToken(f)
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, nil
}

// Clone 深拷贝，避免调用方修改 Moves
func (s Sequence) Clone() Sequence {
	s.Moves = append([]MoveToken(nil), s.Moves...)
	return s
}

// 内置序列
var builtinSequences = []Sequence{
	{
		ID:         "korean-backdash",
		Name:       "Korean backdash",
		Moves:      []MoveToken{"b", "n", "b", "db"},
		StrictLoop: true,
	},
	{
		ID:         "ewgf",
		Name:       "Electric wind god fist",
		Moves:      []MoveToken{"f", "n", "d", "df", "df2"},
		StrictLoop: false,
	},
	{
		ID:         "wavedash",
		Name:       "Wavedash",
		Moves:      []MoveToken{"f", "n", "d", "df"},
		StrictLoop: true,
	},
	{
		ID:         "qcf",
		Name:       "Quarter circle forward",
		Moves:      []MoveToken{"d", "df", "f1"},
		StrictLoop: false,
	},
}

// Catalog 可选序列目录，保持插入顺序
type Catalog struct {
	order []string
	byID  map[string]Sequence
}

// NewCatalog 创建空目录
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]Sequence)}
}

// DefaultCatalog 只包含内置序列
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, s := range builtinSequences {
		_ = c.Add(s)
	}
	return c
}

// Add 校验后加入目录；同 ID 覆盖旧值
func (c *Catalog) Add(s Sequence) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, ok := c.byID[s.ID]; !ok {
		c.order = append(c.order, s.ID)
	}
	c.byID[s.ID] = s.Clone()
	return nil
}

// Get 按 ID 查找
func (c *Catalog) Get(id string) (Sequence, error) {
	s, ok := c.byID[id]
	if !ok {
		return Sequence{}, fmt.Errorf("%w: %q", ErrUnknownSequence, id)
	}
	return s.Clone(), nil
}

// IDs 按加入顺序返回
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// List 按加入顺序返回全部序列
func (c *Catalog) List() []Sequence {
	out := make([]Sequence, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].Clone())
	}
	return out
}

// First 目录中第一个序列，目录为空时 ok=false
func (c *Catalog) First() (Sequence, bool) {
	if len(c.order) == 0 {
		return Sequence{}, false
	}
	return c.byID[c.order[0]].Clone(), true
}

// SortedIDs 字典序，便于日志输出
func (c *Catalog) SortedIDs() []string {
	ids := c.IDs()
	sort.Strings(ids)
	return ids
}
