package db

import (
	"context"
	"database/sql"
)

const harvestJobColumns = `id, provider, status, documents, repeated, sentences, discarded, error_message, started_at, completed_at`

func scanHarvestJob(row interface{ Scan(...interface{}) error }) (*HarvestJob, error) {
	var i HarvestJob
	err := row.Scan(
		&i.ID,
		&i.Provider,
		&i.Status,
		&i.Documents,
		&i.Repeated,
		&i.Sentences,
		&i.Discarded,
		&i.ErrorMessage,
		&i.StartedAt,
		&i.CompletedAt,
	)
	return &i, err
}

const createHarvestJob = `INSERT INTO harvest_jobs (provider) VALUES (?)
RETURNING ` + harvestJobColumns

func (q *Queries) CreateHarvestJob(ctx context.Context, provider string) (*HarvestJob, error) {
	return scanHarvestJob(q.db.QueryRowContext(ctx, createHarvestJob, provider))
}

const getHarvestJob = `SELECT ` + harvestJobColumns + ` FROM harvest_jobs WHERE id = ?`

func (q *Queries) GetHarvestJob(ctx context.Context, id int64) (*HarvestJob, error) {
	return scanHarvestJob(q.db.QueryRowContext(ctx, getHarvestJob, id))
}

const updateHarvestJobProgress = `UPDATE harvest_jobs
SET documents = ?, repeated = ?, sentences = ?, discarded = ?
WHERE id = ?`

type UpdateHarvestJobProgressParams struct {
	ID        int64
	Documents int64
	Repeated  int64
	Sentences int64
	Discarded int64
}

func (q *Queries) UpdateHarvestJobProgress(ctx context.Context, arg UpdateHarvestJobProgressParams) error {
	_, err := q.db.ExecContext(ctx, updateHarvestJobProgress,
		arg.Documents,
		arg.Repeated,
		arg.Sentences,
		arg.Discarded,
		arg.ID,
	)
	return err
}

const updateHarvestJobCompleted = `UPDATE harvest_jobs
SET status = 'completed', completed_at = CURRENT_TIMESTAMP
WHERE id = ?`

func (q *Queries) UpdateHarvestJobCompleted(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, updateHarvestJobCompleted, id)
	return err
}

const updateHarvestJobFailed = `UPDATE harvest_jobs
SET status = 'failed', error_message = ?, completed_at = CURRENT_TIMESTAMP
WHERE id = ?`

type UpdateHarvestJobFailedParams struct {
	ID           int64
	ErrorMessage sql.NullString
}

func (q *Queries) UpdateHarvestJobFailed(ctx context.Context, arg UpdateHarvestJobFailedParams) error {
	_, err := q.db.ExecContext(ctx, updateHarvestJobFailed, arg.ErrorMessage, arg.ID)
	return err
}

const listRecentHarvestJobs = `SELECT ` + harvestJobColumns + ` FROM harvest_jobs
ORDER BY id DESC
LIMIT ?`

func (q *Queries) ListRecentHarvestJobs(ctx context.Context, limit int64) ([]*HarvestJob, error) {
	rows, err := q.db.QueryContext(ctx, listRecentHarvestJobs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*HarvestJob
	for rows.Next() {
		i, err := scanHarvestJob(rows)
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

const documentColumns = `id, job_id, source, url, title, content_hash, paragraphs, sentences, created_at`

func scanDocument(row interface{ Scan(...interface{}) error }) (*Document, error) {
	var i Document
	err := row.Scan(
		&i.ID,
		&i.JobID,
		&i.Source,
		&i.Url,
		&i.Title,
		&i.ContentHash,
		&i.Paragraphs,
		&i.Sentences,
		&i.CreatedAt,
	)
	return &i, err
}

const createDocument = `INSERT INTO documents (job_id, source, url, title, content_hash, paragraphs, sentences)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + documentColumns

type CreateDocumentParams struct {
	JobID       int64
	Source      string
	Url         string
	Title       sql.NullString
	ContentHash string
	Paragraphs  int64
	Sentences   int64
}

func (q *Queries) CreateDocument(ctx context.Context, arg CreateDocumentParams) (*Document, error) {
	return scanDocument(q.db.QueryRowContext(ctx, createDocument,
		arg.JobID,
		arg.Source,
		arg.Url,
		arg.Title,
		arg.ContentHash,
		arg.Paragraphs,
		arg.Sentences,
	))
}

// Only documents from completed jobs count as already harvested.
const getDocumentByHash = `SELECT d.id, d.job_id, d.source, d.url, d.title, d.content_hash, d.paragraphs, d.sentences, d.created_at
FROM documents d
JOIN harvest_jobs j ON j.id = d.job_id
WHERE d.content_hash = ? AND j.status = 'completed'
ORDER BY d.id
LIMIT 1`

func (q *Queries) GetDocumentByHash(ctx context.Context, contentHash string) (*Document, error) {
	return scanDocument(q.db.QueryRowContext(ctx, getDocumentByHash, contentHash))
}

const countDocuments = `SELECT COUNT(*) FROM documents`

func (q *Queries) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countDocuments).Scan(&count)
	return count, err
}

const countDocumentsBySource = `SELECT source, COUNT(*) AS count FROM documents
GROUP BY source
ORDER BY source`

type CountDocumentsBySourceRow struct {
	Source string
	Count  int64
}

func (q *Queries) CountDocumentsBySource(ctx context.Context) ([]*CountDocumentsBySourceRow, error) {
	rows, err := q.db.QueryContext(ctx, countDocumentsBySource)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*CountDocumentsBySourceRow
	for rows.Next() {
		var i CountDocumentsBySourceRow
		if err := rows.Scan(&i.Source, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
