package server

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"motiontrainer/motion"
)

type preference struct {
	sequence string
	seen     time.Time
}

// Manager 管理全部会话的生命周期，并按客户端记住上次选择的序列
// 偏好只保存在内存中，超过 SessionTTL 未访问即失效
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	prefs    map[string]preference

	cfg    Config
	clock  motion.Clock
	ctx    context.Context
	cancel context.CancelFunc
	seq    atomic.Uint64
}

var (
	defaultManager *Manager
	once           sync.Once
)

// InitManager 以给定配置初始化单例，只有第一次调用生效
func InitManager(cfg Config) *Manager {
	once.Do(func() {
		defaultManager = NewManager(cfg, nil)
	})
	return defaultManager
}

// GetManager 单例会话管理器；未初始化时使用默认配置
func GetManager() *Manager {
	return InitManager(DefaultConfig())
}

// NewManager clock 为 nil 时使用系统时钟
func NewManager(cfg Config, clock motion.Clock) *Manager {
	if clock == nil {
		clock = motion.SystemClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		sessions: make(map[string]*Session),
		prefs:    make(map[string]preference),
		cfg:      cfg,
		clock:    clock,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Config 只读配置
func (m *Manager) Config() Config { return m.cfg }

// CreateSession 创建会话，恢复该客户端上次的选择；不启动帧循环
func (m *Manager) CreateSession(clientID string, conn *ClientConn) *Session {
	id := fmt.Sprintf("s-%d", m.seq.Add(1))
	s := NewSession(id, clientID, conn, m.cfg, m.clock)
	s.onSelect = m.Remember
	s.onClose = m.Remove
	if seq, ok := m.Preference(clientID); ok {
		if err := s.trainer.SelectSequence(seq); err != nil {
			Log.Warnf("session %s: restore sequence %q: %v", id, seq, err)
		}
	}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	Log.Infof("session %s created: client=%q sequence=%s", id, clientID, s.trainer.Sequence().ID)
	return s
}

// StartSession 创建会话并启动帧循环
func (m *Manager) StartSession(clientID string, conn *ClientConn) *Session {
	s := m.CreateSession(clientID, conn)
	s.StartTicker(m.ctx)
	return s
}

// Get 按 ID 查找会话
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove 从表中移除（会话自身已在 Tick 线程中关闭）
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// SessionIDs 排序后的会话 ID
func (m *Manager) SessionIDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Remember 记录客户端最近一次选择的序列
func (m *Manager) Remember(clientID, sequence string) {
	if clientID == "" {
		return
	}
	m.mu.Lock()
	m.prefs[clientID] = preference{sequence: sequence, seen: m.clock.Now()}
	m.mu.Unlock()
}

// Preference 读取并续期；过期条目会被清除
func (m *Manager) Preference(clientID string) (string, bool) {
	if clientID == "" {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prefs[clientID]
	if !ok {
		return "", false
	}
	now := m.clock.Now()
	if m.cfg.SessionTTL > 0 && now.Sub(p.seen) > m.cfg.SessionTTL {
		delete(m.prefs, clientID)
		return "", false
	}
	p.seen = now
	m.prefs[clientID] = p
	return p.sequence, true
}

// Shutdown 停止所有帧循环
func (m *Manager) Shutdown() {
	m.cancel()
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		s.StopTicker()
	}
}
