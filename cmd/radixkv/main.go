package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/matteso1/radixkv/internal/metrics"
	"github.com/matteso1/radixkv/internal/observer"
	"github.com/matteso1/radixkv/internal/store"
)

func main() {
	app := cli.App{
		Name:  "radixkv",
		Usage: "exercise the concurrent radix-trie key-value store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log verbosity level (eg: warn, info, debug)",
				Value:   "info",
				EnvVars: []string{"RADIXKV_LOG_LEVEL", "LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "event-log",
				Usage:   "append store events to this file (empty disables)",
				Value:   "radixkv.log",
				EnvVars: []string{"RADIXKV_EVENT_LOG"},
			},
			&cli.BoolFlag{
				Name:  "console-events",
				Usage: "log every store event to stderr",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "serve Prometheus metrics on this address while running (empty disables)",
				EnvVars: []string{"RADIXKV_METRICS_ADDR"},
			},
			&cli.UintFlag{
				Name:  "bloom-capacity",
				Usage: "expected key count for the negative-lookup filter (0 disables)",
			},
		},
	}
	app.Commands = []*cli.Command{
		&cli.Command{
			Name:   "demo",
			Usage:  "run the fruit scenario with one writer and concurrent readers",
			Action: runDemo,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "readers",
					Usage: "number of concurrent reader goroutines",
					Value: 5,
				},
			},
		},
		&cli.Command{
			Name:   "stress",
			Usage:  "run random operations from many goroutines and verify ordering",
			Action: runStress,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "workers",
					Usage: "number of concurrent worker goroutines",
					Value: 8,
				},
				&cli.IntFlag{
					Name:  "ops",
					Usage: "operations per worker",
					Value: 10000,
				},
				&cli.IntFlag{
					Name:  "keys",
					Usage: "size of the key space",
					Value: 1000,
				},
				&cli.Int64Flag{
					Name:  "seed",
					Usage: "random seed",
					Value: 1,
				},
			},
		},
	}
	app.RunAndExitOnError()
}

func configLogger(cctx *cli.Context, writer io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// env is the store plus the sinks wired from global flags.
type env struct {
	store   *store.Store
	logger  *slog.Logger
	file    *observer.File
	metrics *metrics.Metrics
	reg     *prometheus.Registry
}

func setup(cctx *cli.Context) (*env, error) {
	logger := configLogger(cctx, os.Stderr)

	config := store.DefaultConfig()
	config.Logger = logger
	config.BloomCapacity = cctx.Uint("bloom-capacity")

	e := &env{
		store:  store.NewWithConfig(config),
		logger: logger,
		reg:    prometheus.NewRegistry(),
	}

	if cctx.Bool("console-events") {
		e.store.Attach(observer.NewConsole(logger))
	}

	if path := cctx.String("event-log"); path != "" {
		f, err := observer.OpenFile(path)
		if err != nil {
			return nil, err
		}
		e.file = f
		e.store.Attach(f)
	}

	e.metrics = metrics.NewMetrics(e.reg)
	e.metrics.TrackStore(e.store)
	e.store.Attach(e.metrics)
	return e, nil
}

func (e *env) close() {
	if e.file == nil {
		return
	}
	e.store.Detach(e.file)
	if err := e.file.Close(); err != nil {
		e.logger.Error("failed to close event log", "err", err)
		return
	}
	e.logger.Info("event log closed", "path", e.file.Path())
}

// run executes fn while the optional metrics server is up, stopping on
// SIGINT/SIGTERM or when fn returns.
func run(cctx *cli.Context, fn func(ctx context.Context, e *env) error) error {
	e, err := setup(cctx)
	if err != nil {
		return err
	}
	defer e.close()

	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	g.Go(func() error {
		return metrics.RunServer(ctx, cctx.String("metrics-addr"), e.reg)
	})
	g.Go(func() error {
		defer cancel()
		return fn(ctx, e)
	})
	return g.Wait()
}
