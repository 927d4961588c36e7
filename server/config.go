package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"motiontrainer/motion"
)

// LogConfig 日志文件与滚动策略
type LogConfig struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Config 服务整体配置，来源：默认值 → ini 文件 → 命令行
type Config struct {
	Addr      string
	StaticDir string
	Log       LogConfig

	FrameRate       int
	PollInterval    time.Duration
	InputBuffer     int
	SessionTTL      time.Duration
	DefaultSequence string
	Trainer         motion.TrainerConfig

	KeyBindings    map[string]motion.MoveKey
	ButtonBindings map[int]motion.MoveKey
	DirectionAxis  int

	Catalog *motion.Catalog
}

// DefaultConfig 不依赖任何文件即可运行的默认配置
func DefaultConfig() Config {
	return Config{
		Addr:      ":8080",
		StaticDir: "web",
		Log: LogConfig{
			File:       "app.log",
			Level:      "debug",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		FrameRate:      motion.FramesPerSecond,
		PollInterval:   4 * time.Millisecond,
		InputBuffer:    256,
		SessionTTL:     30 * time.Minute,
		Trainer:        motion.DefaultTrainerConfig(),
		KeyBindings:    motion.DefaultKeyBindings(),
		ButtonBindings: motion.DefaultButtonBindings(),
		DirectionAxis:  motion.DefaultDirectionAxis,
		Catalog:        motion.DefaultCatalog(),
	}
}

// FrameInterval 由 FrameRate 推导
func (c Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return motion.DefaultFrameInterval
	}
	return time.Second / time.Duration(c.FrameRate)
}

// LoadConfig 读取 ini 文件；path 为空或文件不存在时返回默认配置
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig 解析 ini 内容，未出现的键保持默认值
func ParseConfig(data []byte) (Config, error) {
	f, err := ini.Load(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse ini: %w", err)
	}
	cfg := DefaultConfig()

	srv := f.Section("server")
	cfg.Addr = srv.Key("addr").MustString(cfg.Addr)
	cfg.StaticDir = srv.Key("static_dir").MustString(cfg.StaticDir)

	lg := f.Section("log")
	if lg.HasKey("file") {
		// 允许显式留空，表示输出到 stderr
		cfg.Log.File = lg.Key("file").String()
	}
	cfg.Log.Level = lg.Key("level").MustString(cfg.Log.Level)
	cfg.Log.MaxSizeMB = lg.Key("max_size_mb").MustInt(cfg.Log.MaxSizeMB)
	cfg.Log.MaxBackups = lg.Key("max_backups").MustInt(cfg.Log.MaxBackups)
	cfg.Log.MaxAgeDays = lg.Key("max_age_days").MustInt(cfg.Log.MaxAgeDays)
	cfg.Log.Compress = lg.Key("compress").MustBool(cfg.Log.Compress)

	tr := f.Section("trainer")
	cfg.FrameRate = tr.Key("frame_rate").MustInt(cfg.FrameRate)
	cfg.PollInterval = time.Duration(tr.Key("poll_interval_ms").MustInt(int(cfg.PollInterval/time.Millisecond))) * time.Millisecond
	cfg.InputBuffer = tr.Key("input_buffer").MustInt(cfg.InputBuffer)
	cfg.SessionTTL = time.Duration(tr.Key("session_ttl_minutes").MustInt(int(cfg.SessionTTL/time.Minute))) * time.Minute
	cfg.Trainer.CooldownSeconds = tr.Key("cooldown_seconds").MustInt(cfg.Trainer.CooldownSeconds)
	cfg.Trainer.StartCountdownSeconds = tr.Key("start_countdown_seconds").MustInt(cfg.Trainer.StartCountdownSeconds)
	cfg.DefaultSequence = tr.Key("default_sequence").String()
	if cfg.FrameRate <= 0 || cfg.FrameRate > 1000 {
		return Config{}, fmt.Errorf("trainer.frame_rate out of range: %d", cfg.FrameRate)
	}
	if cfg.InputBuffer <= 0 {
		return Config{}, fmt.Errorf("trainer.input_buffer must be positive: %d", cfg.InputBuffer)
	}

	if kb, err := parseKeyboardSection(f); err != nil {
		return Config{}, err
	} else if len(kb) > 0 {
		cfg.KeyBindings = kb
	}

	gp := f.Section("gamepad")
	cfg.DirectionAxis = gp.Key("axis").MustInt(cfg.DirectionAxis)
	if buttons, err := parseButtonBindings(gp); err != nil {
		return Config{}, err
	} else if len(buttons) > 0 {
		cfg.ButtonBindings = buttons
	}

	if !tr.Key("builtin_sequences").MustBool(true) {
		cfg.Catalog = motion.NewCatalog()
	}
	if err := parseSequences(f, cfg.Catalog); err != nil {
		return Config{}, err
	}
	if _, ok := cfg.Catalog.First(); !ok {
		return Config{}, errors.New("no sequences configured")
	}
	if cfg.DefaultSequence != "" {
		if _, err := cfg.Catalog.Get(cfg.DefaultSequence); err != nil {
			return Config{}, fmt.Errorf("trainer.default_sequence: %w", err)
		}
	}
	return cfg, nil
}

// [keyboard] 键码 = 通道名，例如 ArrowUp = up / KeyJ = 1
func parseKeyboardSection(f *ini.File) (map[string]motion.MoveKey, error) {
	sec, err := f.GetSection("keyboard")
	if err != nil {
		return nil, nil
	}
	out := make(map[string]motion.MoveKey, len(sec.Keys()))
	for _, k := range sec.Keys() {
		mk, err := motion.ParseMoveKey(k.String())
		if err != nil {
			return nil, fmt.Errorf("keyboard.%s: %w", k.Name(), err)
		}
		out[k.Name()] = mk
	}
	return out, nil
}

// [gamepad] 数字键名为按钮下标，例如 0 = 1
func parseButtonBindings(sec *ini.Section) (map[int]motion.MoveKey, error) {
	out := make(map[int]motion.MoveKey)
	for _, k := range sec.Keys() {
		idx, err := strconv.Atoi(k.Name())
		if err != nil {
			continue
		}
		mk, err := motion.ParseMoveKey(k.String())
		if err != nil {
			return nil, fmt.Errorf("gamepad.%s: %w", k.Name(), err)
		}
		out[idx] = mk
	}
	return out, nil
}

const sequenceSectionPrefix = "sequence."

// [sequence.<id>] name / moves / strict_loop
func parseSequences(f *ini.File, catalog *motion.Catalog) error {
	for _, sec := range f.Sections() {
		name := sec.Name()
		if !strings.HasPrefix(name, sequenceSectionPrefix) {
			continue
		}
		id := strings.TrimPrefix(name, sequenceSectionPrefix)
		moves, err := motion.ParseMoves(sec.Key("moves").String())
		if err != nil {
			return fmt.Errorf("sequence %s: %w", id, err)
		}
		seq := motion.Sequence{
			ID:         id,
			Name:       sec.Key("name").MustString(id),
			Moves:      moves,
			StrictLoop: sec.Key("strict_loop").MustBool(true),
		}
		if err := catalog.Add(seq); err != nil {
			return err
		}
	}
	return nil
}
