package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alejandrodnm/forecastbot/config"
	"github.com/alejandrodnm/forecastbot/internal/trace"
)

var version = "dev"

// flags globales
type rootFlags struct {
	configPath string
	verbose    bool
	format     string
	symbol     string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close(context.Background())
	if err != nil {
		slog.Error("forecastbot exited with error", "err", err)
		cancel()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "forecastbot",
		Short:         "Evaluate stock price forecasts and ask an LLM for a one-week call",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "config/config.yaml", "path to config file")
	pf.BoolVar(&flags.verbose, "verbose", false, "set log level to debug")
	pf.StringVar(&flags.format, "format", "", "log format: text|json (overrides config)")
	pf.StringVar(&flags.symbol, "symbol", "", "stock symbol (overrides config and SYMBOL)")

	root.AddCommand(
		newMovingAvgCmd(a),
		newInfoCmd(a),
		newNewsCmd(a),
		newEvaluateCmd(a),
		newRecommendCmd(a),
		newRunCmd(a),
		newHistoryCmd(a),
	)
	return root
}

// setup carga config, logger y tracing. Los adapters se crean bajo demanda
// en cada subcomando.
func (a *app) setup(flags *rootFlags) error {
	path := flags.configPath
	if _, err := os.Stat(path); os.IsNotExist(err) && path == "config/config.yaml" {
		path = "" // sin fichero: defaults + entorno
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
	}
	if flags.format != "" {
		cfg.Log.Format = flags.format
	}
	if flags.symbol != "" {
		cfg.Symbol = flags.symbol
	}
	setupLogger(cfg.Log)

	if err := a.initTrace(cfg.Trace); err != nil {
		return err
	}

	a.cfg = cfg
	slog.Debug("forecastbot starting",
		"version", version,
		"config", path,
		"symbol", cfg.Symbol,
		"report_dir", cfg.Report.Dir,
		"horizon", cfg.Horizon(),
	)
	return nil
}

func (a *app) initTrace(cfg config.TraceConfig) error {
	var w io.Writer
	if cfg.Enabled && cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		w = f
	}
	return trace.Init(trace.Config{
		Enabled:     cfg.Enabled,
		PrettyPrint: cfg.Pretty,
		Version:     version,
		Writer:      w,
	})
}

// close vacía el tracing y cierra storage/ficheros. Idempotente.
func (a *app) close(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := trace.Shutdown(shutdownCtx); err != nil {
		slog.Warn("trace shutdown", "err", err)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("close", "err", err)
		}
	}
	a.closers = nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
