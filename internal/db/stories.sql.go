package db

import (
	"context"
	"database/sql"
)

const storyColumns = `id, title, seed, chapters, words, word_goal, output_path, created_at`

func scanStory(row interface{ Scan(...interface{}) error }) (*Story, error) {
	var i Story
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Seed,
		&i.Chapters,
		&i.Words,
		&i.WordGoal,
		&i.OutputPath,
		&i.CreatedAt,
	)
	return &i, err
}

const createStory = `INSERT INTO stories (id, title, seed, chapters, words, word_goal, output_path)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + storyColumns

type CreateStoryParams struct {
	ID         string
	Title      string
	Seed       sql.NullInt64
	Chapters   int64
	Words      int64
	WordGoal   int64
	OutputPath sql.NullString
}

func (q *Queries) CreateStory(ctx context.Context, arg CreateStoryParams) (*Story, error) {
	return scanStory(q.db.QueryRowContext(ctx, createStory,
		arg.ID,
		arg.Title,
		arg.Seed,
		arg.Chapters,
		arg.Words,
		arg.WordGoal,
		arg.OutputPath,
	))
}

const getStory = `SELECT ` + storyColumns + ` FROM stories WHERE id = ?`

func (q *Queries) GetStory(ctx context.Context, id string) (*Story, error) {
	return scanStory(q.db.QueryRowContext(ctx, getStory, id))
}

const listRecentStories = `SELECT ` + storyColumns + ` FROM stories
ORDER BY created_at DESC, rowid DESC
LIMIT ?`

func (q *Queries) ListRecentStories(ctx context.Context, limit int64) ([]*Story, error) {
	rows, err := q.db.QueryContext(ctx, listRecentStories, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Story
	for rows.Next() {
		i, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countStories = `SELECT COUNT(*) FROM stories`

func (q *Queries) CountStories(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countStories).Scan(&count)
	return count, err
}

const countStoriesToday = `SELECT COUNT(*) FROM stories
WHERE created_at >= datetime('now', '-1 day')`

// CountStoriesToday counts stories recorded in the last 24 hours.
func (q *Queries) CountStoriesToday(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countStoriesToday).Scan(&count)
	return count, err
}
