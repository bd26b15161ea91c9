package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stockbook/stockbook/internal/app"
	"github.com/stockbook/stockbook/internal/catalog"
	"github.com/stockbook/stockbook/internal/console"
	"github.com/stockbook/stockbook/internal/platform/db"
)

const usage = `usage: stockbook [command]

commands:
  (none)   interactive menu
  migrate  create tables and indexes
  seed     load the sample catalog`

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	command := ""
	if len(args) > 0 {
		command = args[0]
	}
	switch command {
	case "", "migrate", "seed":
	case "help", "-h", "--help":
		fmt.Println(usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "stockbook: unknown command %q\n\n%s\n", command, usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		return 1
	}
	logger := app.NewLogger(cfg)

	isolation, err := cfg.IsoLevel()
	if err != nil {
		logger.Error("transaction isolation", slog.Any("error", err))
		return 1
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns, ApplicationName: "stockbook"})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		return 1
	}
	defer pool.Close()

	if command == "migrate" || cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Error("migrate schema", slog.Any("error", err))
			return 1
		}
		logger.Info("schema ready")
	}
	if command == "migrate" {
		return 0
	}

	service := catalog.NewService(catalog.NewRepository(pool, isolation))

	if command == "seed" {
		res, err := service.Seed(ctx, catalog.SampleCatalog())
		if err != nil {
			logger.Error("seed catalog", slog.Any("error", err), slog.Int("created", res.Created))
			return 1
		}
		logger.Info("seed catalog", slog.Int("created", res.Created), slog.Int("skipped", res.Skipped))
		fmt.Printf("→ %d productos creados, %d omitidos\n", res.Created, res.Skipped)
		return 0
	}

	menu := console.New(service, console.Options{
		Logger:        logger,
		ActionTimeout: cfg.ActionTimeout,
	})
	logger.Info("stockbook started", slog.String("env", cfg.AppEnv))
	if err := menu.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("console", slog.Any("error", err))
		return 1
	}
	return 0
}
