// Command gigmatch runs the matching engine over a textual command
// script: one command per input line, one result block per line of input.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/adapters/textcmd"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/app"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/config"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/domain/scoring"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/pkg/logger"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/pkg/metrics"
)

// Metrics server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cliApp := &cli.App{
		Name:  "gigmatch",
		Usage: "freelance-marketplace matching and lifecycle engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "command script to read (defaults to stdin)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "file to write results to (defaults to stdout)",
			},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		logger.Get().Error(ctx, "run failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	ctx := c.Context
	log := logger.Get()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsAddr != "" {
		startMetricsListener(ctx, cfg.MetricsAddr, log)
	}

	engine, err := app.New(
		app.WithLogger(log.Named("engine")),
		app.WithScorer(scoring.New(
			scoring.WithWeights(cfg.SkillWeight, cfg.RatingWeight, cfg.ReliabilityWeight),
			scoring.WithBurnoutPenalty(cfg.BurnoutPenalty),
		)),
	)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	in, closeIn, err := openInput(c.String("input"))
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(c.String("output"))
	if err != nil {
		return err
	}
	defer closeOut()

	dispatcher := textcmd.New(engine, textcmd.WithLogger(log.Named("driver")))
	return dispatcher.Run(ctx, in, out)
}

// startMetricsListener exposes /metrics in the background; the engine
// itself stays single-threaded.
func startMetricsListener(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(ctx, "metrics listener stopped", logger.Error(err))
		}
	}()
	log.Info(ctx, "metrics listener started", logger.String("addr", addr))
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
