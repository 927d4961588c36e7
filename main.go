package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"motiontrainer/server"
)

// 入口：启动 HTTP + WebSocket 服务，每个连接一个练习会话
func main() {
	var (
		addr       string
		configPath string
	)
	flag.StringVar(&configPath, "config", "trainer.ini", "ini config file; missing file means defaults")
	flag.StringVar(&addr, "addr", "", "server listen address, e.g. :8080 (overrides config)")
	flag.Parse()

	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		panic(err)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	// 使用 zap 写入日志文件（带滚动）
	if err := server.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	m := server.InitManager(cfg)
	server.Log.Infof("sequences: %v frame_rate=%d cooldown=%ds", cfg.Catalog.SortedIDs(), cfg.FrameRate, cfg.Trainer.CooldownSeconds)

	srv := &http.Server{Addr: cfg.Addr, Handler: m.NewMux()}

	go func() {
		server.Log.Infof("trainer listening on %s; open http://localhost%v/", cfg.Addr, cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")
	m.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
