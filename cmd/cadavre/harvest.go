package main

import (
	"fmt"

	"github.com/abdulachik/cadavre/internal/config"
	"github.com/abdulachik/cadavre/internal/corpus"
	"github.com/abdulachik/cadavre/internal/harvest"
	"github.com/spf13/cobra"
)

var (
	harvestQuiet bool
	harvestPlan  bool
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Crawl the configured index and rebuild the corpus",
	Long: `Crawl every story linked from INDEX_URL, walk each story's chapters,
sort every sentence into its bucket and save the corpus to CORPUS_PATH.

The previous corpus file is only replaced when the crawl yields documents.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().BoolVarP(&harvestQuiet, "quiet", "q", false, "Hide the progress bar")
	harvestCmd.Flags().BoolVar(&harvestPlan, "plan", false, "List the pages the crawl would visit and exit")
	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, (*config.Config).ValidateForHarvest)
	if err != nil {
		return err
	}
	defer a.Close()

	if harvestPlan {
		pages, err := a.WebProvider(nil).Pages(ctx)
		if err != nil {
			return fmt.Errorf("plan crawl: %w", err)
		}
		for _, page := range pages {
			fmt.Println(page)
		}
		fmt.Printf("%d pages\n", len(pages))
		return nil
	}

	bar := newProgress(!harvestQuiet)
	_, report, err := a.Harvest(ctx, bar.document, a.WebProvider(bar.start))
	bar.stop()
	if err != nil {
		return fmt.Errorf("harvest: %w", err)
	}

	printReport(report)
	return nil
}

// printReport prints a harvest summary.
func printReport(r *harvest.Report) {
	fmt.Println("=== Harvest ===")
	fmt.Printf("Documents:  %d (%d seen before)\n", r.Documents, r.Repeated)
	fmt.Printf("Paragraphs: %d\n", r.Paragraphs)
	fmt.Printf("Sentences:  %d kept, %d discarded\n", r.Kept, r.Discarded)
	fmt.Println()

	for _, b := range corpus.Buckets {
		fmt.Printf("  %-16s %d\n", b, r.Buckets[b])
	}

	if len(r.Failed) > 0 {
		fmt.Println()
		fmt.Println("Failed providers:")
		for _, name := range r.Failed {
			fmt.Printf("  - %s\n", name)
		}
	}
}
