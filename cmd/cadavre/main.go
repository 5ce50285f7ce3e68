package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/abdulachik/cadavre/internal/app"
	"github.com/abdulachik/cadavre/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cadavre",
	Short: "An exquisite corpse novel generator",
	Long: `cadavre harvests prose from the web or from local books, files every
sentence by where it sat in its paragraph and chapter, and stitches a new
novel together from those pieces until it reaches a word goal.`,
	SilenceUsage: true,
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLevel(os.Getenv("LOG_LEVEL")),
	})))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadApp loads and checks configuration, then wires the application.
func loadApp(ctx context.Context, validate func(*config.Config) error) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return a, nil
}
