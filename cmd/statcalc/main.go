package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/statcalc/internal/calc"
	"github.com/udisondev/statcalc/internal/config"
	"github.com/udisondev/statcalc/internal/stat"
)

const ConfigPath = "config/statcalc.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("statcalc", flag.ContinueOnError)
	cfgPath := fs.String("config", ConfigPath, "path to the calculator config")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if p := os.Getenv("STATCALC_CONFIG"); p != "" {
		*cfgPath = p
	}

	// Load config FIRST to determine log level
	cfg, err := config.LoadCalculator(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))
	calc.EnableDebugLogging(logLevel == slog.LevelDebug)

	entity, ok := stat.ParseEntity(cfg.Entity)
	if !ok {
		return fmt.Errorf("config entity %q: unknown entity", cfg.Entity)
	}

	paths := fs.Args()
	if len(paths) == 0 {
		return fmt.Errorf("no build files given")
	}
	slog.Info("statcalc starting", "log_level", cfg.LogLevel, "builds", len(paths), "policy", cfg.RemovalPolicy)

	reports := make([]*Report, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if cfg.MaxConcurrentBuilds > 0 {
		g.SetLimit(cfg.MaxConcurrentBuilds)
	}
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := Evaluate(cfg, entity, p)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range reports {
		if err := r.Write(os.Stdout); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
