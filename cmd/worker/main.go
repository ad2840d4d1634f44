package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightsurety/config"
	"github.com/Domenick1991/flightsurety/internal/cache"
	"github.com/Domenick1991/flightsurety/internal/kafka"
	"github.com/Domenick1991/flightsurety/internal/logging"
	"github.com/Domenick1991/flightsurety/internal/repository"
	"github.com/Domenick1991/flightsurety/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := command().Execute(); err != nil {
		os.Exit(1)
	}
}

func command() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:          "flightsurety-worker",
		Short:        "Projects resolved flight statuses into Postgres",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfgPath)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", defaultConfigPath(), "path to the YAML config (CONFIG_PATH)")
	return cmd
}

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func run(parent context.Context, cfgPath string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Kafka.Enabled() || !cfg.Database.Enabled() {
		return errors.New("worker needs kafka.brokers and database.host")
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	history := repository.NewStatusHistoryRepository(pool)
	if err := history.EnsureSchema(ctx); err != nil {
		return err
	}

	var invalidator worker.FlightCacheInvalidator
	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Redis.FlightsTTL(), cfg.Redis.DedupeTTL())
		defer redisCache.Close()
		invalidator = redisCache
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-history", cfg.Worker.HistoryTopic)
	defer consumer.Close()

	logger.Info("worker consuming", zap.String("topic", cfg.Worker.HistoryTopic))
	projector := worker.NewProjector(history, invalidator, logger)
	if err := consumer.Consume(ctx, projector.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", zap.Error(err))
		return err
	}
	logger.Info("worker shut down")
	return nil
}
