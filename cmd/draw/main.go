package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/basel-ax/draw/internal/config"
	"github.com/basel-ax/draw/internal/domain"
	"github.com/basel-ax/draw/internal/report"
	"github.com/basel-ax/draw/internal/repository"
	"github.com/basel-ax/draw/internal/service"
	_ "github.com/lib/pq"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Warn("received signal, cancelling", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes one generation and returns the process exit status. The
// report and any diagnostic go to stdout; logs go to stderr.
func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("draw", flag.ContinueOnError)
	flags.SetOutput(stderr)
	verbose := flags.Bool("verbose", false, "Enable verbose logging")
	envFile := flags.String("env-file", ".env", "Optional dotenv file applied before reading the environment")
	if err := flags.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	reporter := report.New(stdout)

	cfg, err := config.Load(*envFile)
	if err != nil {
		reporter.Failure(err)
		return 1
	}

	// Configure logging
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if *verbose {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, opts)))

	img, err := generate(ctx, cfg)
	if err != nil {
		slog.Debug("generation failed", "kind", domain.KindOf(err).String(), "error", err)
		reporter.Failure(err)
		return 1
	}

	if err := reporter.Success(img); err != nil {
		slog.Error("failed to write report", "error", err)
		return 1
	}
	return 0
}

func generate(ctx context.Context, cfg *config.Config) (*domain.GeneratedImage, error) {
	args, err := domain.ParseArgs(cfg.Args)
	if err != nil {
		return nil, err
	}

	req := domain.ImageGenerationRequest{
		Prompt: args.Prompt,
		Model:  cfg.Model,
	}
	imgService := service.NewImageGenerationService(cfg, nil)
	if err := imgService.Validate(req); err != nil {
		return nil, err
	}

	if cfg.DB.Enabled() {
		if err := cfg.DB.Validate(); err != nil {
			slog.Warn("generation ledger disabled", "error", err)
		} else if db, err := openLedger(ctx, cfg.DB); err != nil {
			slog.Warn("generation ledger disabled", "error", err)
		} else {
			defer db.Close()
			images := repository.NewPostgresImageRepository(db, cfg.DB.Table)
			if err := images.EnsureSchema(ctx); err != nil {
				slog.Warn("generation ledger disabled", "error", err)
			} else {
				imgService.UseLedger(images)
			}
		}
	}

	return imgService.GenerateImage(ctx, req)
}

func openLedger(ctx context.Context, dbCfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(dbCfg.MaxOpenConns)
	db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	db.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, dbCfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
