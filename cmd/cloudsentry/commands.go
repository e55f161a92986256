package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/devsec-labs/cloudsentry/internal/api"
	"github.com/devsec-labs/cloudsentry/internal/config"
	"github.com/devsec-labs/cloudsentry/internal/engine"
	"github.com/devsec-labs/cloudsentry/internal/notify"
	"github.com/devsec-labs/cloudsentry/internal/policies"
	"github.com/devsec-labs/cloudsentry/internal/policy"
	"github.com/devsec-labs/cloudsentry/internal/storage"
	"github.com/devsec-labs/cloudsentry/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cloudsentry",
		Short: "CloudSentry — multi-cloud security posture policy engine",
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

func newServeCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the policy engine HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, cfgPath)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the config file (default: cloudsentry.yaml in the working directory)")
	return cmd
}

func runServe(cmd *cobra.Command, cfgPath string) error {
	// .env is optional; it only matters for local development.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "cloudsentry").Logger()
	ctx := cmd.Context()

	var (
		alerts storage.AlertStore
		assets storage.AssetStore
	)
	switch cfg.Storage.Driver {
	case "postgres":
		store, err := storage.NewPostgresStore(ctx, cfg.Storage.DSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer store.Close()
		if err := store.Init(ctx); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
		alerts, assets = store, store
	case "memory":
		logger.Warn().Msg("using in-memory storage; alerts will not survive restarts")
		store := storage.NewMemoryStore()
		alerts, assets = store, store
	}

	catalog := policies.NewCatalog()
	logger.Info().Int("policies", catalog.Size()).Msg("policy catalog loaded")

	var notifier engine.Notifier
	if cfg.Notify.Enabled {
		dispatcher := notify.NewDispatcher(notify.Config{
			BaseURL:   cfg.Notify.BaseURL,
			Channel:   cfg.Notify.Channel,
			QueueSize: cfg.Notify.QueueSize,
			Timeout:   cfg.Notify.Timeout,
		}, logger.With().Str("component", "notify").Logger())
		defer dispatcher.Close()
		notifier = dispatcher
	}

	params := &policy.Params{Policies: cfg.Policies}
	evaluator := engine.NewEvaluator(catalog, logger.With().Str("component", "evaluator").Logger())
	eng := engine.New(evaluator, alerts, assets, notifier, params,
		logger.With().Str("component", "engine").Logger())

	handler := &api.Handler{
		Engine: eng,
		Alerts: alerts,
		Log:    logger.With().Str("component", "api").Logger(),
	}
	server := api.NewServer(api.ServerConfig{
		Addr:            cfg.Server.Addr,
		RequestTimeout:  cfg.Server.RequestTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, handler, logger)

	return server.Start()
}
