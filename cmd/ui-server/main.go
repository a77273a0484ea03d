package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Its-donkey/gbpl-site/internal/ui/config"
	"github.com/Its-donkey/gbpl-site/internal/ui/maploader"
	uiserver "github.com/Its-donkey/gbpl-site/internal/ui/server"
	"github.com/Its-donkey/gbpl-site/logging"
	"github.com/Its-donkey/gbpl-site/telemetry"
)

type cliFlags struct {
	listen   string
	assets   string
	logs     string
	mapMode  string
	logLevel string
	metrics  bool
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		// If a second signal arrives, force exit immediately.
		<-sigCh
		log.Println("second interrupt received, forcing shutdown")
		os.Exit(1)
	}()
	defer func() {
		signal.Stop(sigCh)
		cancel()
	}()

	var flags cliFlags
	flag.StringVar(&flags.listen, "listen", "", "address to serve the site (defaults to config.json server.addr+port)")
	flag.StringVar(&flags.assets, "assets", "", "directory holding main.wasm and wasm_exec.js (defaults to config.json app.assets)")
	flag.StringVar(&flags.logs, "logs", "", "directory for rotated log files (defaults to config.json app.logs)")
	flag.StringVar(&flags.mapMode, "map-mode", "", "map mode: auto, live or vector (defaults to config.json maps.mode)")
	flag.StringVar(&flags.logLevel, "log-level", "info", "minimum log level")
	flag.BoolVar(&flags.metrics, "metrics", false, "export OpenTelemetry metrics (also config.json telemetry.metrics)")
	configPath := flag.String("config", "config.json", "path to server configuration")
	flag.Parse()

	if err := run(ctx, *configPath, flags); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server error: %v", err)
	}
}

func run(ctx context.Context, configPath string, flags cliFlags) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg, err = applyFlags(cfg, flags)
	if err != nil {
		return err
	}

	logger := logging.New("gbpl-site", logging.ParseLevel(flags.logLevel), os.Stdout)
	if cfg.App.Logs != "" {
		fw, err := logging.NewFileWriter(cfg.App.Logs, "site.log", 0, 0)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer fw.Close()
		logger.AddWriter(fw)
	}

	metrics, closeMetrics, err := newMetrics(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			logger.Error("general", "flush metrics", err, nil)
		}
		_ = closeMetrics()
	}()
	metrics.Install()

	return uiserver.Run(ctx, uiserver.Options{
		Listen:        cfg.ListenAddr(),
		AssetsDir:     cfg.App.Assets,
		Config:        cfg,
		Logger:        logger,
		MeterProvider: metrics.MeterProvider(),
	})
}

// newMetrics builds the meter provider. Metrics go to metrics.log beside the
// site log when a log directory is set, otherwise to stdout.
// The returned close func releases the metrics file after Shutdown.
func newMetrics(cfg config.Config, stdout io.Writer) (*telemetry.Provider, func() error, error) {
	noClose := func() error { return nil }
	if !cfg.Telemetry.Metrics {
		provider, err := telemetry.New(telemetry.Config{})
		return provider, noClose, err
	}
	out, closeOut := stdout, noClose
	if cfg.App.Logs != "" {
		fw, err := logging.NewFileWriter(cfg.App.Logs, "metrics.log", 0, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("open metrics file: %w", err)
		}
		out, closeOut = fw, fw.Close
	}
	provider, err := telemetry.New(telemetry.Config{
		Enabled:     true,
		ServiceName: "gbpl-site",
		Interval:    cfg.MetricsInterval(),
		Writer:      out,
	})
	if err != nil {
		_ = closeOut()
		return nil, nil, fmt.Errorf("init metrics: %w", err)
	}
	return provider, closeOut, nil
}

// applyFlags lets non-empty command line values override the loaded config.
func applyFlags(cfg config.Config, flags cliFlags) (config.Config, error) {
	if listen := strings.TrimSpace(flags.listen); listen != "" {
		cfg.Server.Listen = listen
	}
	if assets := strings.TrimSpace(flags.assets); assets != "" {
		cfg.App.Assets = assets
	}
	if logs := strings.TrimSpace(flags.logs); logs != "" {
		cfg.App.Logs = logs
	}
	if flags.metrics {
		cfg.Telemetry.Metrics = true
	}
	if mode := strings.TrimSpace(flags.mapMode); mode != "" {
		cfg.Maps.Mode = mode
		if _, err := maploader.ParseMode(mode); err != nil {
			return config.Config{}, fmt.Errorf("map-mode flag: %w", err)
		}
	}
	return cfg, nil
}
