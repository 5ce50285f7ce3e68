package main

import (
	"fmt"

	"github.com/abdulachik/cadavre/internal/config"
	"github.com/spf13/cobra"
)

var (
	generateLive     bool
	generateFormat   string
	generateSeed     uint64
	generateWords    int
	generateChapters int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a novel from the corpus",
	Long: `Stitch a new novel together from the classified corpus and write it to
OUTPUT_DIR. The seed used is printed so the same novel can be produced again
from the same corpus.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateLive, "live", false, "Harvest from the web before generating")
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", "", "Output format: markdown, html, text or all (default OUTPUT_FORMAT)")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0, "Random seed (default SEED, or the clock)")
	generateCmd.Flags().IntVarP(&generateWords, "words", "w", 0, "Word goal (default WORD_GOAL)")
	generateCmd.Flags().IntVarP(&generateChapters, "chapters", "c", 0, "Chapter count (default CHAPTER_COUNT)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, func(cfg *config.Config) error {
		if generateLive {
			cfg.LiveFetch = true
		}
		if generateFormat != "" {
			cfg.OutputFormat = generateFormat
		}
		if generateSeed != 0 {
			cfg.Seed = generateSeed
		}
		if generateWords > 0 {
			cfg.WordGoal = generateWords
		}
		if generateChapters > 0 {
			cfg.ChapterCount = generateChapters
		}
		return cfg.ValidateForGenerate()
	})
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.Corpus(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	story, seed, err := a.Generate(c, a.Config.GeneratorOptions(), a.Config.Seed)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	paths, err := a.Publish(ctx, story, a.Config.OutputFormat, seed, a.Config.WordGoal)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	fmt.Printf("%s\n", story.Title)
	fmt.Printf("  %d chapters, %d words, seed %d\n", len(story.Chapters), story.WordCount(), seed)
	for _, path := range paths {
		fmt.Printf("  wrote %s\n", path)
	}
	return nil
}
