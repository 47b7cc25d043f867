package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/clinic-triage/cmd/mainconfig"
	"github.com/wolfman30/clinic-triage/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-triage/internal/config"
	"github.com/wolfman30/clinic-triage/internal/console"
	"github.com/wolfman30/clinic-triage/internal/export"
	"github.com/wolfman30/clinic-triage/pkg/logging"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	cfg := appconfig.Load()

	// Logs go to stderr so the console owns stdout
	logger := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("starting clinic triage desk",
		"env", cfg.Env,
		"triage_backend", cfg.TriageBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("clinic exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("clinic stopped")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	rt, err := bootstrap.OpenRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	var s3Client export.S3API
	if cfg.ExportBucket != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return fmt.Errorf("load AWS config: %w", err)
		}
		s3Client = mainconfig.NewS3Client(awsCfg, cfg)
	}
	exporter := bootstrap.BuildExporter(cfg, s3Client, logger)

	reg := prometheus.NewRegistry()
	svc, err := bootstrap.BuildServices(cfg, rt, reg, exporter, logger)
	if err != nil {
		return err
	}

	recoverCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	waiting, err := svc.Desk.Recover(recoverCtx)
	cancel()
	if err != nil {
		return err
	}
	if waiting > 0 {
		fmt.Printf("Recovered %d waiting patients.\n", waiting)
	}

	c := console.New(svc, os.Stdout, console.Options{
		Prompt:  "> ",
		Timeout: cfg.StoreTimeout,
		Logger:  logger,
	})
	fmt.Println(`Clinic triage desk. Type "help" for commands.`)
	return c.Run(ctx, os.Stdin)
}
