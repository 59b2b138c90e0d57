package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(realMain(os.Args[1:], openSerial))
}

// realMain runs the exporter and returns the process exit code. Deferred
// cleanup, closing the log file included, runs before main exits.
func realMain(args []string, open openFunc) int {
	fs := flag.NewFlagSet("pms5003-exporter", flag.ContinueOnError)
	configPath := fs.String("config", "", "設定ファイル (YAML) のパス")
	// ポート番号のコマンドラインオプション
	port := fs.Int("p", 0, "Prometheus exporterのポート番号 (0なら設定ファイルの値)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if *port != 0 {
		cfg.Metrics.Addr = fmt.Sprintf(":%d", *port)
	}

	logger, logFile := newLogger(cfg.Log)
	defer logFile.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, open, logger); err != nil {
		logger.Error("exporter stopped", "error", err)
		return 1
	}
	return 0
}

// run serves metrics and polls every configured sensor until ctx is done.
func run(ctx context.Context, cfg *Config, open openFunc, logger *slog.Logger) error {
	reg := newRegistry()
	metrics := newMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metricsHandler(reg))
	srv := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", cfg.Metrics.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", cfg.Metrics.Addr)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Prometheus metrics HTTPサーバ起動
		logger.Info("Prometheus metrics exporter started", "addr", ln.Addr().String(), "path", cfg.Metrics.Path)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	for _, sc := range cfg.Sensors {
		p := NewPoller(sc, open, metrics, logger)
		g.Go(func() error {
			return p.Run(ctx)
		})
	}
	return g.Wait()
}
