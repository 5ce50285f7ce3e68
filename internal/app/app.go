package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/abdulachik/cadavre/internal/config"
	"github.com/abdulachik/cadavre/internal/corpus"
	"github.com/abdulachik/cadavre/internal/db"
	"github.com/abdulachik/cadavre/internal/generator"
	"github.com/abdulachik/cadavre/internal/harvest"
	"github.com/abdulachik/cadavre/internal/render"
	"github.com/abdulachik/cadavre/internal/segment"
	"github.com/abdulachik/cadavre/internal/source"
)

// App is the main application container holding all dependencies.
type App struct {
	Config     *config.Config
	Store      *db.Store
	Segmenter  *segment.Segmenter
	Classifier *corpus.Classifier
}

// New creates a new application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return &App{
		Config:     cfg,
		Store:      store,
		Segmenter:  segment.Default(),
		Classifier: corpus.NewClassifier(cfg.ClassifierConfig()),
	}, nil
}

// WebProvider returns the configured web provider. onPlan may be nil.
func (a *App) WebProvider(onPlan func(pages int)) *source.WebProvider {
	cfg := a.Config.WebConfig()
	cfg.OnPlan = onPlan
	return source.NewWebProvider(cfg)
}

// DirProvider returns a provider over the sources directory.
func (a *App) DirProvider() *source.DirProvider {
	return source.NewDirProvider(a.Config.SourcesDir, 0)
}

// Harvest runs providers, saves the merged corpus to the corpus path and
// returns it. The cached corpus is left alone when the harvest fails.
func (a *App) Harvest(ctx context.Context, onDocument func(source.Document), providers ...source.Provider) (*corpus.Corpus, *harvest.Report, error) {
	h := harvest.New(harvest.Config{
		Providers:  providers,
		Splitter:   a.Segmenter,
		Classifier: a.Classifier,
		Store:      a.Store,
		OnDocument: onDocument,
	})

	c, report, err := h.Run(ctx)
	if err != nil {
		return nil, report, err
	}

	if err := corpus.Save(c, a.Config.CorpusPath); err != nil {
		return nil, report, fmt.Errorf("save corpus: %w", err)
	}
	slog.Info("corpus saved", "path", a.Config.CorpusPath, "sentences", c.Total())

	return c, report, nil
}

// Corpus returns the corpus to generate from: a fresh web harvest when live
// fetching is on, the cached file otherwise.
func (a *App) Corpus(ctx context.Context) (*corpus.Corpus, error) {
	if a.Config.LiveFetch {
		c, _, err := a.Harvest(ctx, nil, a.WebProvider(nil))
		return c, err
	}
	return corpus.Load(a.Config.CorpusPath)
}

// Generate builds a story from c. A zero seed draws one from the clock; the
// seed used is returned so the story can be reproduced.
func (a *App) Generate(c *corpus.Corpus, opts generator.Options, seed uint64) (*generator.Story, uint64, error) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	story, err := generator.New(opts, generator.NewRand(seed)).Generate(c)
	if err != nil {
		return nil, seed, err
	}

	slog.Info("story generated",
		"title", story.Title,
		"chapters", len(story.Chapters),
		"words", story.WordCount(),
		"seed", seed,
	)
	return story, seed, nil
}

// Publish writes story in the given format and records it in the store.
func (a *App) Publish(ctx context.Context, story *generator.Story, format string, seed uint64, goal int) ([]string, error) {
	renderers, err := render.ByName(format)
	if err != nil {
		return nil, err
	}

	paths, err := render.WriteFiles(a.Config.OutputDir, render.Slug(story.Title), story, renderers...)
	if err != nil {
		return paths, err
	}

	var output sql.NullString
	if len(paths) > 0 {
		output = sql.NullString{String: filepath.ToSlash(paths[0]), Valid: true}
	}

	_, err = a.Store.RecordStory(ctx, db.CreateStoryParams{
		Title:      story.Title,
		// Stored as the same 64 bits; read back with uint64().
		Seed:       sql.NullInt64{Int64: int64(seed), Valid: seed != 0},
		Chapters:   int64(len(story.Chapters)),
		Words:      int64(story.WordCount()),
		WordGoal:   int64(goal),
		OutputPath: output,
	})
	if err != nil {
		return paths, fmt.Errorf("record story: %w", err)
	}

	return paths, nil
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
