package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spacesedan/reviewflow/config"
	"github.com/spacesedan/reviewflow/internal/logging"
	"github.com/spacesedan/reviewflow/internal/pipeline"
	"github.com/spacesedan/reviewflow/internal/storage"
)

var configPath string

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	root := &cobra.Command{
		Use:   "reviewflow",
		Short: "Collects and normalizes app reviews from the App Store, Google Play and Reddit",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to config file")

	root.AddCommand(runCmd(), backupCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full multi-target collection pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				slog.Error("Failed to load configuration", slog.String("error", err.Error()))
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return pipeline.Run(ctx, cfg)
		},
	}
}

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back the data directory up to S3 without collecting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				slog.Error("Failed to load configuration", slog.String("error", err.Error()))
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			count, err := storage.BackupDataDir(ctx, cfg.AWS.BucketName, cfg.DataDir)
			if err != nil {
				return err
			}
			slog.Info("S3 backup completed", slog.Int("files_uploaded", count))
			return nil
		},
	}
}
