package main

import (
	"fmt"
	"log/slog"

	"github.com/abdulachik/cadavre/internal/config"
	"github.com/abdulachik/cadavre/internal/source"
	"github.com/spf13/cobra"
)

var (
	downloadForce bool
	downloadDir   string
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download public-domain books from Project Gutenberg",
	Long: `Download a starter set of public-domain novels into SOURCES_DIR so the
classify command has something to read.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().BoolVarP(&downloadForce, "force", "f", false, "Re-download existing files")
	downloadCmd.Flags().StringVarP(&downloadDir, "dir", "d", "", "Output directory (default SOURCES_DIR)")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dir := downloadDir
	if dir == "" {
		dir = cfg.SourcesDir
	}

	d := source.NewDownloader(dir, cfg.UserAgent, nil)

	var downloaded, skipped, failed int
	for _, book := range source.Catalogue {
		if !downloadForce && d.Exists(book) {
			slog.Info("skipping existing book", "title", book.Title, "path", d.Path(book))
			skipped++
			continue
		}

		slog.Info("downloading book", "title", book.Title, "url", book.URL)
		if err := d.Download(ctx, book); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("failed to download book", "title", book.Title, "error", err)
			failed++
			continue
		}
		downloaded++
	}

	fmt.Printf("Downloaded %d books to %s (%d skipped, %d failed)\n", downloaded, dir, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d downloads failed", failed)
	}
	return nil
}
