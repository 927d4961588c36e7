package server

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (m *Manager) sessionFromQuery(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := r.URL.Query().Get("session")
	if id == "" {
		http.Error(w, "missing session query", http.StatusBadRequest)
		return nil, false
	}
	s, ok := m.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

// HandleSequences 列出可选序列
// GET /sequences
func (m *Manager) HandleSequences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sequences": m.cfg.Catalog.List()})
}

// HandleAdminConfig 提供会话训练配置的读取与更新（热更新倒计时长度）
// GET /admin/config?session=s-1  返回当前配置
// POST /admin/config?session=s-1 以 JSON 载荷更新部分字段
func (m *Manager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	s, ok := m.sessionFromQuery(w, r)
	if !ok {
		return
	}

	type cfg struct {
		CooldownSeconds       *int `json:"cooldownSeconds,omitempty"`
		StartCountdownSeconds *int `json:"startCountdownSeconds,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.TrainerConfig())
		return
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		next := s.TrainerConfig()
		if body.CooldownSeconds != nil {
			next.CooldownSeconds = *body.CooldownSeconds
		}
		if body.StartCountdownSeconds != nil {
			next.StartCountdownSeconds = *body.StartCountdownSeconds
		}
		if next.CooldownSeconds < 0 || next.StartCountdownSeconds < 0 {
			http.Error(w, "negative duration", http.StatusBadRequest)
			return
		}
		if !s.Configure(next) {
			http.Error(w, "session busy", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "config": next})
		Log.Infof("config update queued: session=%s cooldown=%d start=%d",
			s.ID, next.CooldownSeconds, next.StartCountdownSeconds)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleMetrics 输出指定会话的运行指标；不带参数时列出会话
// GET /metrics?session=s-1
func (m *Manager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("session") == "" {
		writeJSON(w, http.StatusOK, map[string]any{"sessions": m.SessionIDs()})
		return
	}
	s, ok := m.sessionFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session": s.ID,
		"metrics": s.metrics.Snapshot(),
	})
}

// NewMux 注册全部 HTTP 路由
func (m *Manager) NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.HandleWS)
	mux.HandleFunc("/sequences", m.HandleSequences)
	// 管理与监控接口
	mux.HandleFunc("/admin/config", m.HandleAdminConfig)
	mux.HandleFunc("/metrics", m.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if m.cfg.StaticDir != "" {
		// 前后端分离：将 / 映射到静态资源目录
		mux.Handle("/", http.FileServer(http.Dir(m.cfg.StaticDir)))
	}
	return mux
}
