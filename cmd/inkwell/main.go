// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point of the inkwell server. The serve
// command runs the HTTP server; migrate, seed and token are maintenance
// commands for operators and development.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"inkwell/internal/config"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:           "inkwell",
		Short:         "Multi-tenant blogging platform with a component page builder",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			setupLogger(cfg)
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  runMigrate,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create the demo blog if it does not exist",
		RunE:  runSeed,
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue an admin API session for the demo owner",
		RunE:  runToken,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, tokenCmd)
	tokenCmd.Flags().String("email", "demo@inkwell.local", "email recorded in the session")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setupLogger installs the default logger: text in development, JSON
// elsewhere.
func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}
