package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/cadavre/internal/config"
	"github.com/abdulachik/cadavre/internal/source"
	"github.com/abdulachik/cadavre/internal/watch"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the corpus whenever SOURCES_DIR changes",
	Long: `Classify SOURCES_DIR once, then watch it and classify again each time a
supported book is added, changed or removed. Stops on SIGINT or SIGTERM.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before rebuilding")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()

	rebuild := func(ctx context.Context, changed []string) error {
		slog.Info("rebuilding corpus", "changed", len(changed))
		c, report, err := a.Harvest(ctx, nil, a.DirProvider())
		if err != nil {
			return err
		}
		slog.Info("corpus rebuilt",
			"documents", report.Documents,
			"sentences", c.Total(),
			"discarded", report.Discarded,
		)
		return nil
	}

	if err := rebuild(ctx, nil); err != nil {
		slog.Warn("initial build failed", "error", err)
	}

	w, err := watch.New(watch.Config{
		Dir:      a.Config.SourcesDir,
		Debounce: watchDebounce,
		Match:    source.Supported,
		Rebuild:  rebuild,
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", a.Config.SourcesDir, err)
	}

	slog.Info("watching for changes", "dir", a.Config.SourcesDir)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	slog.Info("watcher stopped")
	return nil
}
