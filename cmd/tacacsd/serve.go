package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gotacacs "github.com/vitalvas/tacacsd"
	"github.com/vitalvas/tacacsd/internal/config"
	"github.com/vitalvas/tacacsd/internal/corestate"
	"github.com/vitalvas/tacacsd/internal/daemon"
	"github.com/vitalvas/tacacsd/internal/machine"
	"github.com/vitalvas/tacacsd/internal/policy"
	"github.com/vitalvas/tacacsd/internal/redisstate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the TACACS+ server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProcess()
	if err != nil {
		return fmt.Errorf("tacacsd: loading process config: %w", err)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("tacacsd: building logger: %w", err)
	}
	defer log.Sync()

	vhost, err := config.NewVhostWatcher(cfg.VhostConfig, log)
	if err != nil {
		return fmt.Errorf("tacacsd: loading virtual-server config: %w", err)
	}
	defer vhost.Close()

	var evaluator machine.Evaluator = vhost.Registry()
	if cfg.PolicyURL != "" {
		evaluator = policy.NewHTTPDelegate(cfg.PolicyURL, vhost.Registry())
	}

	store, err := buildStateStore(cfg)
	if err != nil {
		return fmt.Errorf("tacacsd: building state store: %w", err)
	}

	listener, err := gotacacs.ListenTCP(cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("tacacsd: listening on %s: %w", cfg.ListenAddr, err)
	}

	d := daemon.New(listener, store, evaluator, []byte(cfg.Secret), log)

	metricsSrv := startMetricsServer(cfg.MetricsAddr, log)
	defer metricsSrv.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- d.Serve() }()

	select {
	case <-sigCh:
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped unexpectedly", zap.Error(err))
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.Shutdown(ctx)
}

// buildStateStore picks the memory or Redis/Valkey StateStore backend named
// by cfg.StateBackend ("memory", the default, or "redis").
func buildStateStore(cfg *config.Process) (daemon.StateStore, error) {
	switch cfg.StateBackend {
	case "", "memory":
		return corestate.New(cfg.MaxSessions, cfg.Timeout(), corestate.WithStateSeed(cfg.StateSeed)), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("tacacsd: state_backend=redis requires TACACSD_REDIS_ADDR")
		}
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return redisstate.New(rdb, cfg.MaxSessions, cfg.Timeout(), nil), nil
	default:
		return nil, fmt.Errorf("tacacsd: unknown state_backend %q", cfg.StateBackend)
	}
}

func startMetricsServer(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}
