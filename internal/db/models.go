package db

import (
	"database/sql"
)

// Harvest job states.
const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

type HarvestJob struct {
	ID           int64
	Provider     string
	Status       string
	Documents    int64
	Repeated     int64
	Sentences    int64
	Discarded    int64
	ErrorMessage sql.NullString
	StartedAt    sql.NullTime
	CompletedAt  sql.NullTime
}

type Document struct {
	ID          int64
	JobID       int64
	Source      string
	Url         string
	Title       sql.NullString
	ContentHash string
	Paragraphs  int64
	Sentences   int64
	CreatedAt   sql.NullTime
}

type Story struct {
	ID         string
	Title      string
	Seed       sql.NullInt64
	Chapters   int64
	Words      int64
	WordGoal   int64
	OutputPath sql.NullString
	CreatedAt  sql.NullTime
}
