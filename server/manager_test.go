package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"motiontrainer/motion"
)

func newTestManager(t *testing.T) (*Manager, *motion.ManualClock) {
	t.Helper()
	clock := motion.NewManualClock(testEpoch)
	cfg := testConfig()
	cfg.SessionTTL = time.Minute
	m := NewManager(cfg, clock)
	t.Cleanup(m.Shutdown)
	return m, clock
}

func testConn() *ClientConn {
	return &ClientConn{send: make(chan []byte, 256)}
}

func TestManagerPreferenceTTL(t *testing.T) {
	m, clock := newTestManager(t)
	m.Remember("c", "ewgf")
	m.Remember("", "qcf")

	if seq, ok := m.Preference("c"); !ok || seq != "ewgf" {
		t.Fatalf("Preference = %q, %v", seq, ok)
	}
	// 读取会续期
	clock.Advance(50 * time.Second)
	if _, ok := m.Preference("c"); !ok {
		t.Fatal("preference expired early")
	}
	clock.Advance(50 * time.Second)
	if _, ok := m.Preference("c"); !ok {
		t.Fatal("read did not renew preference")
	}
	clock.Advance(61 * time.Second)
	if _, ok := m.Preference("c"); ok {
		t.Fatal("preference should expire after ttl")
	}
	if _, ok := m.Preference("c"); ok {
		t.Fatal("expired preference came back")
	}
	if _, ok := m.Preference(""); ok {
		t.Fatal("empty client id should never be remembered")
	}
}

func TestManagerCreateSessionRestoresSequence(t *testing.T) {
	m, _ := newTestManager(t)
	m.Remember("c", "ewgf")
	m.Remember("x", "gone")

	s1 := m.CreateSession("c", testConn())
	s2 := m.CreateSession("x", testConn())
	s3 := m.CreateSession("", testConn())
	if s1.ID != "s-1" || s2.ID != "s-2" || s3.ID != "s-3" {
		t.Fatalf("ids = %s %s %s", s1.ID, s2.ID, s3.ID)
	}
	if got := s1.trainer.Sequence().ID; got != "ewgf" {
		t.Fatalf("restored sequence = %q", got)
	}
	if got := s2.trainer.Sequence().ID; got != "korean-backdash" {
		t.Fatalf("unknown preference should fall back, got %q", got)
	}
	if ids := m.SessionIDs(); len(ids) != 3 || ids[0] != "s-1" {
		t.Fatalf("SessionIDs = %v", ids)
	}
	if _, ok := m.Get("s-2"); !ok {
		t.Fatal("Get(s-2) missing")
	}
}

func TestManagerSelectRemembersAndLeaveRemoves(t *testing.T) {
	m, clock := newTestManager(t)
	s := m.CreateSession("d", testConn())
	msg, err := ParseClientMessage([]byte(`{"type":"control","command":"select","sequence":"wavedash"}`))
	if err != nil {
		t.Fatal(err)
	}
	s.Enqueue(msg)
	s.Tick(clock.Now())
	if seq, ok := m.Preference("d"); !ok || seq != "wavedash" {
		t.Fatalf("Preference = %q, %v", seq, ok)
	}

	s.RequestLeave()
	s.Tick(clock.Now())
	if _, ok := m.Get(s.ID); ok {
		t.Fatal("session still registered after leave")
	}
	// 偏好在会话结束后仍保留，供下一次连接使用
	next := m.CreateSession("d", testConn())
	if next.trainer.Sequence().ID != "wavedash" {
		t.Fatalf("next session sequence = %q", next.trainer.Sequence().ID)
	}
}

func serve(m *Manager, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	m.NewMux().ServeHTTP(rec, req)
	return rec
}

func TestHandleSequences(t *testing.T) {
	m, _ := newTestManager(t)
	rec := serve(m, http.MethodGet, "/sequences", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := gjson.Parse(rec.Body.String())
	if body.Get("sequences.#").Int() != 4 || body.Get("sequences.0.id").String() != "korean-backdash" {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if body.Get("sequences.1.moves.4").String() != "df2" {
		t.Fatalf("ewgf moves = %s", body.Get("sequences.1.moves").Raw)
	}
	if rec := serve(m, http.MethodPost, "/sequences", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d", rec.Code)
	}
}

func TestHandleAdminConfig(t *testing.T) {
	m, clock := newTestManager(t)
	s := m.CreateSession("c", testConn())

	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   int
	}{
		{"missing session", http.MethodGet, "/admin/config", "", http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/admin/config?session=s-9", "", http.StatusNotFound},
		{"bad json", http.MethodPost, "/admin/config?session=s-1", "{", http.StatusBadRequest},
		{"negative", http.MethodPost, "/admin/config?session=s-1", `{"cooldownSeconds":-1}`, http.StatusBadRequest},
		{"method", http.MethodPut, "/admin/config?session=s-1", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(m, tt.method, tt.target, tt.body); rec.Code != tt.code {
				t.Fatalf("status = %d, want %d", rec.Code, tt.code)
			}
		})
	}

	rec := serve(m, http.MethodPost, "/admin/config?session=s-1", `{"cooldownSeconds":2}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("POST status = %d", rec.Code)
	}
	if got := gjson.Get(rec.Body.String(), "config.cooldownSeconds").Int(); got != 2 {
		t.Fatalf("POST body = %s", rec.Body.String())
	}

	// 更新在下一次 Tick 才生效
	rec = serve(m, http.MethodGet, "/admin/config?session=s-1", "")
	if gjson.Get(rec.Body.String(), "cooldownSeconds").Int() != 0 {
		t.Fatalf("config applied before tick: %s", rec.Body.String())
	}
	s.Tick(clock.Now())
	rec = serve(m, http.MethodGet, "/admin/config?session=s-1", "")
	body := gjson.Parse(rec.Body.String())
	if body.Get("cooldownSeconds").Int() != 2 || body.Get("startCountdownSeconds").Int() != 0 {
		t.Fatalf("GET body = %s", rec.Body.String())
	}
}

func TestHandleMetrics(t *testing.T) {
	m, clock := newTestManager(t)
	s := m.CreateSession("c", testConn())
	s.Enqueue(ClientMessage{Kind: MsgKeys, Codes: []string{"ArrowDown"}})
	s.Tick(clock.Now())

	rec := serve(m, http.MethodGet, "/metrics", "")
	if got := gjson.Get(rec.Body.String(), "sessions.0").String(); got != "s-1" {
		t.Fatalf("sessions = %s", rec.Body.String())
	}
	rec = serve(m, http.MethodGet, "/metrics?session=s-1", "")
	body := gjson.Parse(rec.Body.String())
	if body.Get("metrics.inputs_accepted").Int() != 1 || body.Get("metrics.key_changes").Int() != 1 || body.Get("metrics.moves").Int() != 1 {
		t.Fatalf("metrics = %s", rec.Body.String())
	}
	if rec := serve(m, http.MethodGet, "/metrics?session=nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session status = %d", rec.Code)
	}
}

func TestNewMuxHealthAndStatic(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<title>trainer</title>"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.StaticDir = dir
	m := NewManager(cfg, nil)
	defer m.Shutdown()

	if rec := serve(m, http.MethodGet, "/healthz", ""); rec.Body.String() != "ok" {
		t.Fatalf("healthz = %q", rec.Body.String())
	}
	rec := serve(m, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "trainer") {
		t.Fatalf("static = %d %q", rec.Code, rec.Body.String())
	}
}
