package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abdulachik/cadavre/internal/config"
	"github.com/abdulachik/cadavre/internal/corpus"
	"github.com/abdulachik/cadavre/internal/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const book = `CHAPTER 1

The rain fell on the city. It did not stop.

"Where are we," asked Rose. Nobody answered her.

Silence.

The night went on. Shadows moved. Morning came.

CHAPTER 2

A door opened somewhere. Footsteps followed.

"Run," said the Doctor. They ran.

Breathless.

The chase ended at the river. Everyone slept.
`

func testApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()

	sources := filepath.Join(dir, "books")
	require.NoError(t, os.MkdirAll(sources, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sources, "book.txt"), []byte(book), 0644))

	cfg := &config.Config{
		SourcesDir:   sources,
		CorpusPath:   filepath.Join(dir, "data", "corpus.yaml"),
		DatabasePath: filepath.Join(dir, "data", "cadavre.db"),
		OutputDir:    filepath.Join(dir, "output"),
		BannedWords:  corpus.DefaultBanned,
	}

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestApp_HarvestGeneratePublish(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	c, report, err := a.Harvest(ctx, nil, a.DirProvider())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Documents)
	require.NoError(t, c.Validate())

	// The saved corpus is what a later run loads.
	loaded, err := a.Corpus(ctx)
	require.NoError(t, err)
	assert.True(t, c.Equal(loaded))

	opts := generator.DefaultOptions()
	opts.WordGoal = 200
	opts.Chapters = 2

	story, seed, err := a.Generate(loaded, opts, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), seed)
	assert.GreaterOrEqual(t, story.WordCount(), 200)

	paths, err := a.Publish(ctx, story, "all", seed, opts.WordGoal)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	for _, p := range paths {
		assert.FileExists(t, p)
		assert.True(t, strings.HasPrefix(p, a.Config.OutputDir))
	}

	stories, err := a.Store.ListRecentStories(ctx, 5)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, story.Title, stories[0].Title)
	assert.Equal(t, int64(7), stories[0].Seed.Int64)
}

func TestApp_Generate_RandomSeed(t *testing.T) {
	a := testApp(t)
	c, _, err := a.Harvest(context.Background(), nil, a.DirProvider())
	require.NoError(t, err)

	opts := generator.DefaultOptions()
	opts.WordGoal = 20
	opts.Chapters = 1

	_, seed, err := a.Generate(c, opts, 0)
	require.NoError(t, err)
	assert.NotZero(t, seed)
}

func TestApp_Corpus_Missing(t *testing.T) {
	a := testApp(t)

	_, err := a.Corpus(context.Background())
	var unavailable *corpus.CorpusUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestApp_Publish_UnknownFormat(t *testing.T) {
	a := testApp(t)
	story := &generator.Story{Title: "x"}

	_, err := a.Publish(context.Background(), story, "epub", 1, 10)
	assert.Error(t, err)
}

func TestApp_Publish_SameTitleKeepsBothStories(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	story := func(opening string) *generator.Story {
		return &generator.Story{
			Title: "Run",
			Chapters: []generator.Chapter{{
				Number: 1,
				Title:  "Go",
				Blocks: []generator.Block{{Kind: generator.KindOpening, Sentences: []string{opening}}},
			}},
			Closing: generator.Block{Kind: generator.KindTheEnd, Sentences: []string{generator.TheEnd}},
		}
	}

	first, err := a.Publish(ctx, story("The first door opened."), "markdown", 1, 10)
	require.NoError(t, err)
	second, err := a.Publish(ctx, story("The second door opened."), "markdown", 2, 10)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0], second[0])

	data, err := os.ReadFile(first[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "The first door opened.")

	data, err = os.ReadFile(second[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "The second door opened.")

	stories, err := a.Store.ListRecentStories(ctx, 2)
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.NotEqual(t, stories[0].OutputPath.String, stories[1].OutputPath.String)
}
