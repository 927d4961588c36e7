package server

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"motiontrainer/motion"
)

const sampleConfig = `
[server]
addr = :9090
static_dir = public

[log]
file =
level = info

[trainer]
frame_rate = 120
poll_interval_ms = 2
cooldown_seconds = 2
start_countdown_seconds = 0
default_sequence = hellsweep
session_ttl_minutes = 5

[keyboard]
ArrowUp = up
ArrowDown = down
ArrowLeft = left
ArrowRight = right
KeyZ = 1
KeyX = 2

[gamepad]
axis = 6
0 = 2
1 = 1

[sequence.hellsweep]
name = Hellsweep
moves = f, n, d, df4
strict_loop = false
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9090" || cfg.StaticDir != "public" {
		t.Errorf("server section: %+v", cfg)
	}
	if cfg.Log.File != "" || cfg.Log.Level != "info" || cfg.Log.MaxBackups != 3 {
		t.Errorf("log section: %+v", cfg.Log)
	}
	if cfg.FrameRate != 120 || cfg.FrameInterval() != time.Second/120 || cfg.PollInterval != 2*time.Millisecond {
		t.Errorf("frame settings: rate=%d poll=%v", cfg.FrameRate, cfg.PollInterval)
	}
	if cfg.Trainer.CooldownSeconds != 2 || cfg.Trainer.StartCountdownSeconds != 0 {
		t.Errorf("trainer config: %+v", cfg.Trainer)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if len(cfg.KeyBindings) != 6 || cfg.KeyBindings["KeyZ"] != motion.KeyAttack1 {
		t.Errorf("KeyBindings = %v", cfg.KeyBindings)
	}
	if _, ok := cfg.KeyBindings["KeyW"]; ok {
		t.Error("keyboard section should replace default bindings")
	}
	if cfg.DirectionAxis != 6 || len(cfg.ButtonBindings) != 2 || cfg.ButtonBindings[0] != motion.KeyAttack2 {
		t.Errorf("gamepad: axis=%d buttons=%v", cfg.DirectionAxis, cfg.ButtonBindings)
	}
	hs, err := cfg.Catalog.Get("hellsweep")
	if err != nil {
		t.Fatal(err)
	}
	if hs.Name != "Hellsweep" || hs.StrictLoop || len(hs.Moves) != 4 || hs.Moves[3] != "df4" {
		t.Errorf("hellsweep = %+v", hs)
	}
	if _, err := cfg.Catalog.Get("korean-backdash"); err != nil {
		t.Error("builtin sequences should be kept by default")
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if cfg.Addr != def.Addr || cfg.FrameRate != motion.FramesPerSecond || cfg.Trainer != def.Trainer {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.FrameInterval() != motion.DefaultFrameInterval {
		t.Fatalf("FrameInterval() = %v", cfg.FrameInterval())
	}
	if len(cfg.KeyBindings) != len(motion.DefaultKeyBindings()) {
		t.Fatalf("KeyBindings = %v", cfg.KeyBindings)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		is   error
	}{
		{"bad move key", "[keyboard]\nKeyQ = jump\n", nil},
		{"bad button key", "[gamepad]\n0 = kick\n", nil},
		{"bad move token", "[sequence.x]\nmoves = f, bd\n", motion.ErrInvalidMove},
		{"empty sequence", "[sequence.x]\nmoves =\n", motion.ErrEmptySequence},
		{"unknown default", "[trainer]\ndefault_sequence = nope\n", motion.ErrUnknownSequence},
		{"no sequences", "[trainer]\nbuiltin_sequences = false\n", nil},
		{"frame rate", "[trainer]\nframe_rate = 0\n", nil},
		{"input buffer", "[trainer]\ninput_buffer = -1\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("err = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.ini"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != DefaultConfig().Addr {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trainer.ini")
	if err := os.WriteFile(path, []byte("[server]\naddr = :7000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
}

func TestInitLoggerStderrAndLevel(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()
	if err := InitLogger(LogConfig{Level: "warn"}); err != nil {
		t.Fatal(err)
	}
	if Log.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be disabled at warn level")
	}
	if err := InitLogger(LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestInitLoggerFile(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()
	path := filepath.Join(t.TempDir(), "trainer.log")
	if err := InitLogger(LogConfig{File: path, Level: "debug", MaxSizeMB: 1}); err != nil {
		t.Fatal(err)
	}
	Log.Infof("hello %d", 1)
	SyncLogger()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("log file is empty")
	}
}
