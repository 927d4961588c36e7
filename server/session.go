package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/tidwall/sjson"

	"motiontrainer/motion"
)

// Session 一个练习者：权威状态维护在内存，单线程 Tick 推进
type Session struct {
	ID       string
	ClientID string

	conn    *ClientConn
	inbox   chan ClientMessage
	leaveCh chan struct{}

	input    *RemoteInput
	sampler  *motion.Sampler
	movement *motion.Movement
	timers   *motion.TimerQueue
	trainer  *motion.Trainer
	loop     *motion.FrameLoop
	metrics  *SessionMetrics

	pollInterval time.Duration
	onSelect     func(clientID, sequence string)
	onClose      func(id string)

	dirty   bool
	closed  bool
	cfgMu   sync.RWMutex
	cfgView motion.TrainerConfig
}

// NewSession 创建会话并装配输入 → 记法 → 匹配的管线
func NewSession(id, clientID string, conn *ClientConn, cfg Config, clock motion.Clock) *Session {
	if clock == nil {
		clock = motion.SystemClock{}
	}
	input := &RemoteInput{}
	timers := motion.NewTimerQueue(clock)
	s := &Session{
		ID:       id,
		ClientID: clientID,
		conn:     conn,
		inbox:    make(chan ClientMessage, cfg.InputBuffer), // 足够缓冲，避免网络读阻塞影响 Tick
		leaveCh:  make(chan struct{}, 1),
		input:    input,
		sampler: motion.NewSampler(input, input,
			motion.WithKeyBindings(cfg.KeyBindings),
			motion.WithButtonBindings(cfg.ButtonBindings),
			motion.WithDirectionAxis(cfg.DirectionAxis),
		),
		movement:     motion.NewMovement(),
		timers:       timers,
		trainer:      motion.NewTrainer(cfg.Catalog, timers, cfg.Trainer),
		loop:         motion.NewFrameLoop(cfg.FrameInterval(), clock),
		metrics:      &SessionMetrics{},
		pollInterval: cfg.PollInterval,
		dirty:        true,
		cfgView:      cfg.Trainer,
	}
	if cfg.DefaultSequence != "" {
		_ = s.trainer.SelectSequence(cfg.DefaultSequence)
	}
	s.movement.SubscribeMoves(s.handleMove)
	s.trainer.Subscribe(s.handleEvent)
	return s
}

// Enqueue 入站消息（不立即生效），等下一次 Tick 处理
func (s *Session) Enqueue(msg ClientMessage) bool {
	// 不阻塞：拥塞时丢弃，保证 Tick 准时
	select {
	case s.inbox <- msg:
		s.metrics.IncAccepted()
		return true
	default:
		s.metrics.IncChanFullDiscarded()
		return false
	}
}

// Configure 请求在 Tick 线程中更新训练器配置
func (s *Session) Configure(cfg motion.TrainerConfig) bool {
	return s.Enqueue(ClientMessage{Kind: msgConfig, trainer: &cfg})
}

// RequestLeave 请求在 Tick 线程中关闭会话，避免并发改动状态
func (s *Session) RequestLeave() {
	select {
	case s.leaveCh <- struct{}{}:
	default:
		// 已有关闭请求
	}
}

// TrainerConfig 当前生效的训练器配置（可跨协程读取）
func (s *Session) TrainerConfig() motion.TrainerConfig {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfgView
}

// Metrics 运行指标
func (s *Session) Metrics() *SessionMetrics { return s.metrics }

// Tick 核心循环：处理输入 → 推进计时器 → 采样 → 匹配 → 广播结果
func (s *Session) Tick(now time.Time) {
	if s.closed {
		return
	}
	s.ProcessInputs()
	if s.closed {
		return
	}
	s.timers.Advance(now)
	if s.movement.ChangeKeys(s.sampler.Sample()) {
		s.metrics.IncKeyChange()
	}
	if s.dirty {
		s.Broadcast()
	}
}

// ProcessInputs 处理当前帧的所有入站消息（非阻塞 drain）
func (s *Session) ProcessInputs() {
	for {
		select {
		case <-s.leaveCh:
			s.shutdown()
			return
		case msg := <-s.inbox:
			s.apply(msg)
		default:
			return
		}
	}
}

func (s *Session) apply(msg ClientMessage) {
	if s.input.Apply(msg) {
		return
	}
	switch msg.Kind {
	case MsgControl:
		s.control(msg)
	case msgConfig:
		if msg.trainer == nil {
			return
		}
		s.trainer.Configure(*msg.trainer)
		s.cfgMu.Lock()
		s.cfgView = s.trainer.Config()
		s.cfgMu.Unlock()
		Log.Infof("session %s: trainer config cooldown=%ds start=%ds",
			s.ID, s.cfgView.CooldownSeconds, s.cfgView.StartCountdownSeconds)
	}
}

func (s *Session) control(msg ClientMessage) {
	var ok bool
	switch msg.Command {
	case CmdStart:
		ok = s.trainer.Start()
	case CmdPause:
		ok = s.trainer.Pause()
	case CmdResume:
		ok = s.trainer.Resume()
	case CmdReset:
		ok = s.trainer.Reset()
	case CmdStop:
		ok = s.trainer.Stop()
	case CmdSelect:
		if err := s.trainer.SelectSequence(msg.Sequence); err != nil {
			Log.Warnf("session %s: select %q: %v", s.ID, msg.Sequence, err)
			s.sendError(err.Error())
			return
		}
		ok = true
		if s.onSelect != nil && s.ClientID != "" {
			s.onSelect(s.ClientID, msg.Sequence)
		}
	}
	Log.Debugf("session %s: %s ok=%v phase=%s", s.ID, msg.Command, ok, s.trainer.Phase())
	s.dirty = true
}

func (s *Session) handleMove(tok motion.MoveToken) {
	s.metrics.IncMove()
	s.trainer.HandleMove(tok)
}

// handleEvent 训练器事件 → 事件帧；状态帧在本 Tick 末尾统一广播
func (s *Session) handleEvent(ev motion.Event) {
	switch ev.Kind {
	case motion.EventMistake:
		s.metrics.IncMistake()
	case motion.EventComplete:
		s.metrics.IncCompletion()
	}
	s.dirty = true
	s.send(eventFrame(ev))
}

func eventFrame(ev motion.Event) []byte {
	b := []byte(`{}`)
	b, _ = sjson.SetBytes(b, "type", string(ev.Kind))
	b, _ = sjson.SetBytes(b, "phase", ev.Phase.String())
	switch ev.Kind {
	case motion.EventMove, motion.EventAdvance, motion.EventComplete, motion.EventMistake, motion.EventRelease:
		b, _ = sjson.SetBytes(b, "move", string(ev.Move))
	case motion.EventCountdown:
		b, _ = sjson.SetBytes(b, "countdown.kind", string(ev.Countdown))
		b, _ = sjson.SetBytes(b, "countdown.remaining", ev.Remaining)
	case motion.EventSequence:
		b, _ = sjson.SetBytes(b, "sequence", ev.Sequence)
	}
	if ev.Kind == motion.EventComplete || ev.Kind == motion.EventMistake {
		b, _ = sjson.SetBytes(b, "correct", ev.State.Correct)
		b, _ = sjson.SetBytes(b, "total", ev.State.Total)
	}
	return b
}

// StateFrame 状态帧，渲染层只读
type StateFrame struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Move    string `json:"move"`
	motion.Snapshot
}

// Broadcast 将当前训练状态推送给客户端（文本 JSON）
func (s *Session) Broadcast() {
	frame := StateFrame{
		Type:     "state",
		Session:  s.ID,
		Move:     string(s.movement.Last()),
		Snapshot: s.trainer.Snapshot(),
	}
	b, err := json.Marshal(frame)
	if err != nil {
		Log.Errorf("session %s: marshal state: %v", s.ID, err)
		return
	}
	s.send(b)
	s.dirty = false
}

func (s *Session) sendError(message string) {
	b, _ := sjson.SetBytes([]byte(`{"type":"error"}`), "message", message)
	s.send(b)
}

func (s *Session) send(b []byte) {
	if s.conn != nil {
		s.conn.Enqueue(b)
	}
}

// shutdown 在 Tick 线程中执行：停止训练、取消计时器、关闭连接
func (s *Session) shutdown() {
	if s.closed {
		return
	}
	s.closed = true
	s.trainer.Stop()
	s.movement.Close()
	s.timers.Clear()
	s.loop.Stop()
	if s.conn != nil {
		s.conn.Close()
	}
	if s.onClose != nil {
		s.onClose(s.ID)
	}
	Log.Infof("session %s closed: %v", s.ID, s.metrics.Snapshot())
}
