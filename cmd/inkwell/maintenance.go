package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/session"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	return database.Migrate(db)
}

func runSeed(cmd *cobra.Command, args []string) error {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}
	return database.Seed(db)
}

// runToken stores a session for the demo owner and prints its id, for use
// as a bearer token against the admin API.
func runToken(cmd *cobra.Command, args []string) error {
	if !cfg.IsDev() {
		return fmt.Errorf("token is only available in development")
	}
	email, err := cmd.Flags().GetString("email")
	if err != nil {
		return err
	}

	client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer client.Close()

	id, err := session.NewStore(client, false).Create(cmd.Context(), nil, &session.Data{
		UserID:    database.DemoOwnerID,
		Email:     email,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
