package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dashpilot/s3-universal-backend/internal/config"
	"github.com/dashpilot/s3-universal-backend/internal/server"
	"github.com/dashpilot/s3-universal-backend/internal/storage"
)

func main() {
	var (
		port    string
		jsonLog bool
	)

	root := &cobra.Command{
		Use:          "s3-universal-backend",
		Short:        "Login, session, and save endpoints backed by S3-compatible storage",
		SilenceUsage: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonLog {
				slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
			}

			cfg := config.Load()
			if port != "" {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.UsingDefaultSecret() {
				slog.Error("JWT_SECRET is not set; running with the built-in default secret. Set JWT_SECRET before exposing this server.")
			}

			store, err := storage.NewGateway(context.Background(), cfg.S3)
			if err != nil {
				return err
			}

			return server.NewServer(cfg, store).Start()
		},
	}
	serve.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	serve.Flags().BoolVar(&jsonLog, "json", false, "log in JSON format")
	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
