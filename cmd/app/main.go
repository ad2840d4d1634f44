package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightsurety/config"
	"github.com/Domenick1991/flightsurety/internal/bootstrap"
	"github.com/Domenick1991/flightsurety/internal/logging"
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
		Use:          "flightsurety",
		Short:        "Runs the airline, flight and oracle registries",
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

	app, err := bootstrap.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("wire application", zap.Error(err))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close application", zap.Error(err))
		}
	}()

	if err := app.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		return err
	}
	logger.Info("shut down")
	return nil
}
