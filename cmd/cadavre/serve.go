package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/cadavre/internal/config"
	"github.com/abdulachik/cadavre/internal/corpus"
	"github.com/abdulachik/cadavre/internal/scheduler"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generator daemon",
	Long: `Run a daemon that re-harvests INDEX_URL every HARVEST_INTERVAL and writes
a new novel every GENERATE_INTERVAL, up to MAX_STORIES_PER_DAY.

Set HARVEST_INTERVAL=0 to generate from the saved corpus only.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, (*config.Config).ValidateForServe)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config
	slog.Info("starting cadavre daemon",
		"harvest_interval", cfg.HarvestInterval,
		"generate_interval", cfg.GenerateInterval,
		"max_stories_per_day", cfg.MaxStoriesPerDay,
	)

	sched := scheduler.New(scheduler.Config{
		HarvestInterval:  cfg.HarvestInterval,
		GenerateInterval: cfg.GenerateInterval,
		MaxStoriesPerDay: cfg.MaxStoriesPerDay,
		Harvest: func(ctx context.Context) error {
			_, _, err := a.Harvest(ctx, nil, a.WebProvider(nil))
			return err
		},
		Generate: func(ctx context.Context) (string, error) {
			c, err := corpus.Load(cfg.CorpusPath)
			if err != nil {
				return "", err
			}

			// Each cycle draws a fresh seed so the daemon never repeats itself.
			story, seed, err := a.Generate(c, cfg.GeneratorOptions(), 0)
			if err != nil {
				return "", err
			}

			paths, err := a.Publish(ctx, story, cfg.OutputFormat, seed, cfg.WordGoal)
			if err != nil {
				return "", err
			}
			slog.Info("story written", "title", story.Title, "paths", paths)
			return story.Title, nil
		},
		StoriesToday: a.Store.CountStoriesToday,
	})

	if err := sched.Run(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("scheduler error: %w", err)
	}

	slog.Info("shutting down...")
	for name, status := range sched.Health().GetAllStatuses() {
		attrs := []any{
			"task", name,
			"healthy", status.Healthy,
			"message", status.Message,
		}
		if !status.LastSuccess.IsZero() {
			attrs = append(attrs, "last_success", status.LastSuccess.Format(time.RFC3339))
		}
		slog.Info("task health", attrs...)
	}
	return nil
}
