// Package harvest turns provider documents into a classified corpus.
package harvest

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abdulachik/cadavre/internal/corpus"
	"github.com/abdulachik/cadavre/internal/db"
	"github.com/abdulachik/cadavre/internal/segment"
	"github.com/abdulachik/cadavre/internal/source"
)

// Report summarizes one harvest run.
type Report struct {
	Documents  int
	Repeated   int
	Paragraphs int
	Kept       int
	Discarded  int
	Buckets    map[corpus.Bucket]int
	// Failed lists providers that could not be read at all.
	Failed []string
}

// Harvester runs providers through segmentation and classification.
type Harvester struct {
	providers  []source.Provider
	splitter   corpus.Splitter
	classifier *corpus.Classifier
	store      *db.Store
	onDocument func(source.Document)
}

// Config holds configuration for the harvester.
type Config struct {
	Providers  []source.Provider
	// Splitter defaults to segment.Default().
	Splitter   corpus.Splitter
	Classifier *corpus.Classifier
	// Store, when set, records a harvest job per provider.
	Store      *db.Store
	// OnDocument is called after each document is classified.
	OnDocument func(source.Document)
}

// New creates a new Harvester.
func New(cfg Config) *Harvester {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = corpus.NewClassifier(corpus.ClassifierConfig{Banned: corpus.DefaultBanned})
	}
	splitter := cfg.Splitter
	if splitter == nil {
		splitter = segment.Default()
	}

	return &Harvester{
		providers:  cfg.Providers,
		splitter:   splitter,
		classifier: classifier,
		store:      cfg.Store,
		onDocument: cfg.OnDocument,
	}
}

// ErrNoDocuments is returned when every provider came back empty.
var ErrNoDocuments = errors.New("no documents harvested")

// Run harvests every provider in order and merges the results. A provider
// that fails outright is logged and skipped; the run only fails if nothing
// at all was harvested or ctx is cancelled.
func (h *Harvester) Run(ctx context.Context) (*corpus.Corpus, *Report, error) {
	merged := corpus.New()
	report := &Report{}

	for _, p := range h.providers {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		if err := h.runProvider(ctx, p, merged, report); err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			slog.Error("provider failed", "source", p.Name(), "error", err)
			report.Failed = append(report.Failed, p.Name())
		}
	}

	report.Buckets = merged.Counts()

	if report.Documents == 0 {
		return nil, report, ErrNoDocuments
	}

	slog.Info("harvest complete",
		"documents", report.Documents,
		"repeated", report.Repeated,
		"kept", report.Kept,
		"discarded", report.Discarded,
	)

	return merged, report, nil
}

// progress is one provider's share of a run.
type progress struct {
	documents int64
	repeated  int64
	sentences int64
	discarded int64
}

func (h *Harvester) runProvider(ctx context.Context, p source.Provider, merged *corpus.Corpus, report *Report) error {
	slog.Info("harvesting", "source", p.Name())

	var job *db.HarvestJob
	if h.store != nil {
		var err error
		job, err = h.store.CreateHarvestJob(ctx, p.Name())
		if err != nil {
			return fmt.Errorf("create harvest job: %w", err)
		}
	}

	var prog progress
	err := p.Documents(ctx, func(d source.Document) error {
		segmented := make([][]string, len(d.Paragraphs))
		total := 0
		for i, lines := range d.Paragraphs {
			segmented[i] = h.splitter.SplitParagraph(lines)
			total += len(segmented[i])
		}

		c := h.classifier.Classify(segmented)
		kept := c.Total()
		merged.Merge(c)

		prog.documents++
		prog.sentences += int64(kept)
		prog.discarded += int64(total - kept)

		report.Documents++
		report.Paragraphs += len(d.Paragraphs)
		report.Kept += kept
		report.Discarded += total - kept

		if job != nil {
			repeated, err := h.record(ctx, job, p.Name(), d, kept)
			if err != nil {
				return err
			}
			if repeated {
				prog.repeated++
				report.Repeated++
			}
			if err := h.store.UpdateHarvestJobProgress(ctx, db.UpdateHarvestJobProgressParams{
				ID:        job.ID,
				Documents: prog.documents,
				Repeated:  prog.repeated,
				Sentences: prog.sentences,
				Discarded: prog.discarded,
			}); err != nil {
				return fmt.Errorf("update harvest job: %w", err)
			}
		}

		slog.Debug("classified document",
			"source", p.Name(),
			"title", d.Title,
			"sentences", total,
			"kept", kept,
		)

		if h.onDocument != nil {
			h.onDocument(d)
		}
		return nil
	})

	if job != nil {
		if err != nil {
			// The job is marked failed even when ctx was cancelled.
			if ferr := h.store.UpdateHarvestJobFailed(context.WithoutCancel(ctx), db.UpdateHarvestJobFailedParams{
				ID:           job.ID,
				ErrorMessage: sql.NullString{String: err.Error(), Valid: true},
			}); ferr != nil {
				slog.Warn("failed to mark harvest job failed", "job_id", job.ID, "error", ferr)
			}
		} else if cerr := h.store.UpdateHarvestJobCompleted(ctx, job.ID); cerr != nil {
			return fmt.Errorf("complete harvest job: %w", cerr)
		}
	}

	return err
}

// record stores d in the harvest log and reports whether the same content was
// already harvested by an earlier completed job.
func (h *Harvester) record(ctx context.Context, job *db.HarvestJob, name string, d source.Document, kept int) (bool, error) {
	hash := Hash(d)

	repeated := true
	if _, err := h.store.GetDocumentByHash(ctx, hash); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("check existing document: %w", err)
		}
		repeated = false
	}

	_, err := h.store.CreateDocument(ctx, db.CreateDocumentParams{
		JobID:       job.ID,
		Source:      name,
		Url:         d.URL,
		Title:       sql.NullString{String: d.Title, Valid: d.Title != ""},
		ContentHash: hash,
		Paragraphs:  int64(len(d.Paragraphs)),
		Sentences:   int64(kept),
	})
	if err != nil {
		return false, fmt.Errorf("create document: %w", err)
	}

	if repeated {
		slog.Debug("document already harvested", "hash", hash[:8], "url", d.URL)
	}
	return repeated, nil
}

// Hash identifies a document by its prose.
func Hash(d source.Document) string {
	sum := sha256.Sum256([]byte(d.Text()))
	return hex.EncodeToString(sum[:])
}
