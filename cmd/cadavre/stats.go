package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abdulachik/cadavre/internal/config"
	"github.com/abdulachik/cadavre/internal/corpus"
	"github.com/abdulachik/cadavre/internal/db"
	"github.com/spf13/cobra"
)

var (
	statsLimit int64
	statsJob   int64
	statsStory string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and database statistics",
	Long:  `Display bucket sizes of the saved corpus, harvested documents and recent stories.`,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Int64VarP(&statsLimit, "limit", "n", 5, "Number of recent jobs and stories to show")
	statsCmd.Flags().Int64Var(&statsJob, "job", 0, "Show one harvest job by id")
	statsCmd.Flags().StringVar(&statsStory, "story", "", "Show one story by id")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()

	switch {
	case statsJob != 0:
		return showJob(ctx, a.Store, statsJob)
	case statsStory != "":
		return showStory(ctx, a.Store, statsStory)
	}

	fmt.Println("=== Cadavre Statistics ===")
	fmt.Println()

	c, err := corpus.Load(a.Config.CorpusPath)
	var unavailable *corpus.CorpusUnavailableError
	switch {
	case errors.As(err, &unavailable):
		fmt.Printf("Corpus: not built yet (%s)\n", a.Config.CorpusPath)
	case err != nil:
		return fmt.Errorf("load corpus: %w", err)
	default:
		fmt.Printf("Corpus: %d sentences (%s)\n", c.Total(), a.Config.CorpusPath)
		for _, b := range corpus.Buckets {
			fmt.Printf("  %-16s %d\n", b, c.Len(b))
		}
	}
	fmt.Println()

	totalDocs, err := a.Store.CountDocuments(ctx)
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}

	bySource, err := a.Store.CountDocumentsBySource(ctx)
	if err != nil {
		return fmt.Errorf("count documents by source: %w", err)
	}

	fmt.Printf("Documents: %d\n", totalDocs)
	for _, row := range bySource {
		fmt.Printf("  %-16s %d\n", row.Source, row.Count)
	}
	fmt.Println()

	jobs, err := a.Store.ListRecentHarvestJobs(ctx, statsLimit)
	if err != nil {
		slog.Warn("failed to list harvest jobs", "error", err)
	}
	if len(jobs) > 0 {
		fmt.Println("Recent harvests:")
		for _, j := range jobs {
			started := ""
			if j.StartedAt.Valid {
				started = j.StartedAt.Time.Format("2006-01-02 15:04")
			}
			line := fmt.Sprintf("  #%d %-6s %-10s %s docs=%d sentences=%d",
				j.ID, j.Provider, j.Status, started, j.Documents, j.Sentences)
			if j.ErrorMessage.Valid {
				line += " error=" + j.ErrorMessage.String
			}
			fmt.Println(line)
		}
		fmt.Println()
	}

	totalStories, err := a.Store.CountStories(ctx)
	if err != nil {
		return fmt.Errorf("count stories: %w", err)
	}

	stories, err := a.Store.ListRecentStories(ctx, statsLimit)
	if err != nil {
		slog.Warn("failed to list stories", "error", err)
	}

	fmt.Printf("Stories: %d\n", totalStories)
	for _, s := range stories {
		fmt.Printf("  %s  %q  %d chapters, %d words", s.ID[:8], s.Title, s.Chapters, s.Words)
		if s.Seed.Valid {
			fmt.Printf(", seed %d", uint64(s.Seed.Int64))
		}
		fmt.Println()
	}

	return nil
}

func showJob(ctx context.Context, store *db.Store, id int64) error {
	j, err := store.GetHarvestJob(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("harvest job %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("get harvest job: %w", err)
	}

	fmt.Printf("Harvest job #%d (%s)\n", j.ID, j.Provider)
	fmt.Printf("  Status:     %s\n", j.Status)
	fmt.Printf("  Documents:  %d (%d seen before)\n", j.Documents, j.Repeated)
	fmt.Printf("  Sentences:  %d kept, %d discarded\n", j.Sentences, j.Discarded)
	if j.StartedAt.Valid {
		fmt.Printf("  Started:    %s\n", j.StartedAt.Time.Format("2006-01-02 15:04:05"))
	}
	if j.CompletedAt.Valid {
		fmt.Printf("  Completed:  %s\n", j.CompletedAt.Time.Format("2006-01-02 15:04:05"))
	}
	if j.ErrorMessage.Valid {
		fmt.Printf("  Error:      %s\n", j.ErrorMessage.String)
	}
	return nil
}

func showStory(ctx context.Context, store *db.Store, id string) error {
	s, err := store.GetStory(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("story %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("get story: %w", err)
	}

	fmt.Printf("%s\n", s.Title)
	fmt.Printf("  ID:        %s\n", s.ID)
	fmt.Printf("  Chapters:  %d\n", s.Chapters)
	fmt.Printf("  Words:     %d of %d\n", s.Words, s.WordGoal)
	if s.Seed.Valid {
		fmt.Printf("  Seed:      %d\n", uint64(s.Seed.Int64))
	}
	if s.OutputPath.Valid {
		fmt.Printf("  Output:    %s\n", s.OutputPath.String)
	}
	if s.CreatedAt.Valid {
		fmt.Printf("  Created:   %s\n", s.CreatedAt.Time.Format("2006-01-02 15:04:05"))
	}
	return nil
}
