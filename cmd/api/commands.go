package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"foodplaza/internal/config"
	"foodplaza/internal/infra/db"
	"foodplaza/internal/infra/kafka"
	"foodplaza/internal/logging"
	"foodplaza/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "foodplaza",
		Short:         "Food plaza order API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(newServeCmd(&envFile))
	cmd.AddCommand(newMigrateCmd(&envFile))
	return cmd
}

// loadConfig は .env → 環境変数の順で設定を読む。
func loadConfig(envFile string) (config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return config.Config{}, err
	}
	return config.Load()
}

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			logger := logging.New(os.Stdout, cfg.LogLevel)

			if err := serve(cmd.Context(), cfg, logger); err != nil {
				logger.Error("server stopped", slog.Any("error", err))
				return err
			}
			return nil
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	defer sqlDB.Close()

	//注文イベント（ブローカー未設定なら送らない）
	events := kafka.NewOrderPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
	defer func() {
		if err := events.Close(); err != nil {
			logger.Warn("close kafka writer", slog.Any("error", err))
		}
	}()
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka brokers not configured, order events disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, "foodplaza"),
	)

	e, err := server.New(server.Deps{
		Config:   cfg,
		Logger:   logger,
		DB:       gormDB,
		Events:   events,
		Registry: reg,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx, e, cfg.Addr(), logger)
}

func newMigrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			logger := logging.New(os.Stdout, cfg.LogLevel)

			gormDB, err := db.Connect(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := gormDB.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := db.Migrate(gormDB); err != nil {
				logger.Error("migrate failed", slog.Any("error", err))
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrate done", slog.Int("tables", len(db.Models())))
			return nil
		},
	}
}
