package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("creates directory and database", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "test.db")

		ctx := context.Background()
		store, err := NewStore(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		_, err = os.Stat(dbPath)
		assert.NoError(t, err)

		var result int
		err = store.QueryRowContext(ctx, "SELECT 1").Scan(&result)
		assert.NoError(t, err)
		assert.Equal(t, 1, result)
	})

	t.Run("sets WAL mode", func(t *testing.T) {
		store := openStore(t)

		var mode string
		err := store.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode)
		assert.NoError(t, err)
		assert.Equal(t, "wal", mode)
	})

	t.Run("enables foreign keys", func(t *testing.T) {
		store := openStore(t)

		var fk int
		err := store.QueryRowContext(context.Background(), "PRAGMA foreign_keys").Scan(&fk)
		assert.NoError(t, err)
		assert.Equal(t, 1, fk)
	})
}

func TestStore_Migrate(t *testing.T) {
	t.Run("applies migrations", func(t *testing.T) {
		store := NewTestStore(t)
		ctx := context.Background()

		for _, table := range []string{"harvest_jobs", "documents", "stories"} {
			var name string
			err := store.QueryRowContext(ctx,
				"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			assert.NoError(t, err)
			assert.Equal(t, table, name)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := NewTestStore(t)
		ctx := context.Background()

		require.NoError(t, store.Migrate(ctx))

		count, err := store.CountStories(ctx)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("lists applied migrations", func(t *testing.T) {
		store := NewTestStore(t)

		list, err := store.Migrations(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "001_harvest.sql", list[0].Version)
		assert.True(t, list[0].Applied)
		assert.True(t, list[1].Applied)
	})
}

func TestStore_Rollback(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	version, err := store.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, "002_stories.sql", version)

	var name string
	err = store.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='stories'").Scan(&name)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	version, err = store.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, "001_harvest.sql", version)

	version, err = store.Rollback(ctx)
	require.NoError(t, err)
	assert.Empty(t, version)

	// Everything comes back.
	require.NoError(t, store.Migrate(ctx))
	_, err = store.CountDocuments(ctx)
	assert.NoError(t, err)
}

func TestExtractMigrations(t *testing.T) {
	content := `-- +migrate Up
CREATE TABLE test (id INTEGER);

-- +migrate Down
DROP TABLE test;
`

	t.Run("extracts up portion", func(t *testing.T) {
		assert.Equal(t, "CREATE TABLE test (id INTEGER);", extractUpMigration(content))
	})

	t.Run("extracts down portion", func(t *testing.T) {
		assert.Equal(t, "DROP TABLE test;", extractDownMigration(content))
	})

	t.Run("handles no down marker", func(t *testing.T) {
		plain := "CREATE TABLE test (id INTEGER);"
		assert.Equal(t, plain, extractUpMigration(plain))
		assert.Empty(t, extractDownMigration(plain))
	})
}

func TestHarvestQueries(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	job, err := store.CreateHarvestJob(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, JobRunning, job.Status)
	assert.Equal(t, "web", job.Provider)

	doc, err := store.CreateDocument(ctx, CreateDocumentParams{
		JobID:       job.ID,
		Source:      "web",
		Url:         "https://example.com/s/1/1/",
		Title:       sql.NullString{String: "Chapter 1", Valid: true},
		ContentHash: "abc",
		Paragraphs:  3,
		Sentences:   9,
	})
	require.NoError(t, err)
	assert.Equal(t, job.ID, doc.JobID)

	// Not visible until the job completes.
	_, err = store.GetDocumentByHash(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.UpdateHarvestJobProgress(ctx, UpdateHarvestJobProgressParams{
		ID: job.ID, Documents: 1, Sentences: 9, Discarded: 2,
	}))
	require.NoError(t, store.UpdateHarvestJobCompleted(ctx, job.ID))

	found, err := store.GetDocumentByHash(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, found.ID)

	got, err := store.GetHarvestJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, got.Status)
	assert.Equal(t, int64(9), got.Sentences)
	assert.Equal(t, int64(2), got.Discarded)
	assert.True(t, got.CompletedAt.Valid)

	failed, err := store.CreateHarvestJob(ctx, "dir")
	require.NoError(t, err)
	require.NoError(t, store.UpdateHarvestJobFailed(ctx, UpdateHarvestJobFailedParams{
		ID:           failed.ID,
		ErrorMessage: sql.NullString{String: "boom", Valid: true},
	}))

	jobs, err := store.ListRecentHarvestJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, JobFailed, jobs[0].Status)
	assert.Equal(t, "boom", jobs[0].ErrorMessage.String)

	count, err := store.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	bySource, err := store.CountDocumentsBySource(ctx)
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, "web", bySource[0].Source)
	assert.Equal(t, int64(1), bySource[0].Count)
}

func TestStoryQueries(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	first, err := store.RecordStory(ctx, CreateStoryParams{
		Title:    "Run",
		Seed:     sql.NullInt64{Int64: 42, Valid: true},
		Chapters: 10,
		Words:    50012,
		WordGoal: 50000,
	})
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)

	second, err := store.RecordStory(ctx, CreateStoryParams{
		Title:      "Stay",
		Chapters:   2,
		Words:      120,
		WordGoal:   100,
		OutputPath: sql.NullString{String: "output/stay.md", Valid: true},
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := store.GetStory(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Seed.Int64)

	stories, err := store.ListRecentStories(ctx, 1)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "Stay", stories[0].Title)

	count, err := store.CountStories(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = store.ExecContext(ctx,
		"UPDATE stories SET created_at = datetime('now', '-2 days') WHERE id = ?", first.ID)
	require.NoError(t, err)

	today, err := store.CountStoriesToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), today)
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// NewTestStore provides a migrated test database.
func NewTestStore(t *testing.T) *Store {
	t.Helper()
	store := openStore(t)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}
