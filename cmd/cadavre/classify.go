package main

import (
	"fmt"
	"log/slog"

	"github.com/abdulachik/cadavre/internal/config"
	"github.com/abdulachik/cadavre/internal/source"
	"github.com/spf13/cobra"
)

var (
	classifyQuiet bool
	classifyDir   string
)

var classifyCmd = &cobra.Command{
	Use:   "classify [files...]",
	Short: "Build the corpus from local books",
	Long: `Read plain text, markdown and PDF books and save the classified corpus
to CORPUS_PATH. With no arguments every supported file under SOURCES_DIR is
read.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().BoolVarP(&classifyQuiet, "quiet", "q", false, "Hide the progress bar")
	classifyCmd.Flags().StringVarP(&classifyDir, "dir", "d", "", "Directory to read (default SOURCES_DIR)")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()

	if classifyDir != "" {
		a.Config.SourcesDir = classifyDir
	}

	var providers []source.Provider
	files := args
	if len(args) == 0 {
		dir := a.DirProvider()
		if files, err = dir.Files(); err != nil {
			return fmt.Errorf("list sources: %w", err)
		}
		providers = append(providers, dir)
	} else {
		for _, path := range args {
			p, err := source.ForFile(path)
			if err != nil {
				return err
			}
			providers = append(providers, p)
		}
	}

	slog.Info("classifying books", "files", len(files))

	bar := newProgress(!classifyQuiet)
	bar.start(len(files))
	_, report, err := a.Harvest(ctx, bar.file, providers...)
	bar.stop()
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	printReport(report)
	return nil
}
