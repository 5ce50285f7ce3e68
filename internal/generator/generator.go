// Package generator assembles stories from a classified corpus.
package generator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/abdulachik/cadavre/internal/corpus"
)

// maxStalledSections bounds consecutive sections that add no words, which
// only happens when a corpus holds blank sentences.
const maxStalledSections = 1000

// ErrNoProgress is returned when sampled sections stop adding words.
var ErrNoProgress = errors.New("generation stalled: sampled sections contain no words")

// Options controls the shape of a generated story.
type Options struct {
	// WordGoal is the target word count for the whole story.
	WordGoal int
	// Chapters is the number of chapters.
	Chapters int
	// SolitaryRate and DialogueRate weigh section kinds against a plain
	// paragraph, which always has weight 1.
	SolitaryRate float64
	DialogueRate float64
	// MaxParagraphSentences bounds paragraph length; at least 2.
	MaxParagraphSentences int
	// MaxDialogueSentences bounds the drawn length of a dialogue run.
	MaxDialogueSentences int
	// MaxTitleAttempts bounds title extraction. Zero uses the default.
	MaxTitleAttempts int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		WordGoal:              50000,
		Chapters:              10,
		SolitaryRate:          0.2,
		DialogueRate:          0.6,
		MaxParagraphSentences: 8,
		MaxDialogueSentences:  6,
		MaxTitleAttempts:      defaultTitleAttempts,
	}
}

// OptionsError reports an option outside its allowed range.
type OptionsError struct {
	Field  string
	Reason string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Field, e.Reason)
}

// Validate checks the generation preconditions.
func (o Options) Validate() error {
	switch {
	case o.Chapters < 1:
		return &OptionsError{Field: "Chapters", Reason: "must be at least 1"}
	case o.WordGoal < o.Chapters:
		return &OptionsError{Field: "WordGoal", Reason: "must be at least the chapter count"}
	case o.SolitaryRate < 0:
		return &OptionsError{Field: "SolitaryRate", Reason: "must not be negative"}
	case o.DialogueRate < 0:
		return &OptionsError{Field: "DialogueRate", Reason: "must not be negative"}
	case o.MaxParagraphSentences < 2:
		return &OptionsError{Field: "MaxParagraphSentences", Reason: "must be at least 2"}
	case o.MaxDialogueSentences < 0:
		return &OptionsError{Field: "MaxDialogueSentences", Reason: "must not be negative"}
	}
	return nil
}

// Generator builds stories by sampling a corpus.
type Generator struct {
	opts   Options
	rng    Rand
	titles *TitleExtractor
}

// New creates a Generator drawing from rng.
func New(opts Options, rng Rand) *Generator {
	return &Generator{
		opts:   opts,
		rng:    rng,
		titles: NewTitleExtractor(rng, opts.MaxTitleAttempts),
	}
}

// Generate assembles a story. It fails before building anything if the
// options are invalid or any bucket of c is empty. c is never modified.
func (g *Generator) Generate(c *corpus.Corpus) (*Story, error) {
	if err := g.opts.Validate(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	target := g.opts.WordGoal / g.opts.Chapters

	title, err := g.titles.Extract(c)
	if err != nil {
		return nil, fmt.Errorf("story title: %w", err)
	}

	a := &assembly{gen: g, corpus: c}
	story := &Story{Title: title}

	for n := 1; n <= g.opts.Chapters; n++ {
		chapter, err := a.chapter(n, target*n)
		if err != nil {
			return nil, fmt.Errorf("chapter %d: %w", n, err)
		}
		story.Chapters = append(story.Chapters, chapter)

		slog.Debug("chapter assembled",
			"chapter", n,
			"title", chapter.Title,
			"blocks", len(chapter.Blocks),
			"total_words", a.words,
		)
	}

	story.Closing = Block{Kind: KindTheEnd, Sentences: []string{TheEnd}}
	return story, nil
}

// assembly carries the running word count across chapters.
type assembly struct {
	gen    *Generator
	corpus *corpus.Corpus
	words  int
}

func (a *assembly) chapter(number, goal int) (Chapter, error) {
	title, err := a.gen.titles.Extract(a.corpus)
	if err != nil {
		return Chapter{}, fmt.Errorf("title: %w", err)
	}
	ch := Chapter{Number: number, Title: title}

	opening, err := a.block(KindOpening, corpus.StartChapter)
	if err != nil {
		return Chapter{}, err
	}
	ch.Blocks = append(ch.Blocks, opening)

	stalled := 0
	for a.words < goal {
		before := a.words
		blocks, err := a.section()
		if err != nil {
			return Chapter{}, err
		}
		ch.Blocks = append(ch.Blocks, blocks...)

		if a.words == before {
			stalled++
			if stalled >= maxStalledSections {
				return Chapter{}, ErrNoProgress
			}
		} else {
			stalled = 0
		}
	}

	closing, err := a.block(KindClosing, corpus.EndChapter)
	if err != nil {
		return Chapter{}, err
	}
	ch.Blocks = append(ch.Blocks, closing)

	return ch, nil
}

// section draws a section kind and builds its blocks.
func (a *assembly) section() ([]Block, error) {
	opts := a.gen.opts
	x := a.gen.rng.Float64() * (1 + opts.SolitaryRate + opts.DialogueRate)

	switch {
	case x < opts.SolitaryRate:
		b, err := a.block(KindSolitary, corpus.Solitary)
		if err != nil {
			return nil, err
		}
		return []Block{b}, nil

	case x < opts.SolitaryRate+opts.DialogueRate:
		// A drawn length of zero still yields one line.
		lines := max(a.gen.rng.IntN(opts.MaxDialogueSentences+1), 1)
		blocks := make([]Block, 0, lines)
		for i := 0; i < lines; i++ {
			b, err := a.block(KindDialogue, corpus.Dialogue)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, b)
		}
		return blocks, nil

	default:
		b, err := a.paragraph()
		if err != nil {
			return nil, err
		}
		return []Block{b}, nil
	}
}

func (a *assembly) paragraph() (Block, error) {
	count := 2 + a.gen.rng.IntN(a.gen.opts.MaxParagraphSentences-1)

	sentences := make([]string, 0, count)
	add := func(b corpus.Bucket) error {
		s, err := a.corpus.Sample(b, a.gen.rng)
		if err != nil {
			return err
		}
		sentences = append(sentences, s)
		return nil
	}

	if err := add(corpus.StartParagraph); err != nil {
		return Block{}, err
	}
	for i := 0; i < count-2; i++ {
		if err := add(corpus.MidParagraph); err != nil {
			return Block{}, err
		}
	}
	if err := add(corpus.EndParagraph); err != nil {
		return Block{}, err
	}

	b := Block{Kind: KindParagraph, Sentences: sentences}
	a.words += b.WordCount()
	return b, nil
}

func (a *assembly) block(kind BlockKind, bucket corpus.Bucket) (Block, error) {
	s, err := a.corpus.Sample(bucket, a.gen.rng)
	if err != nil {
		return Block{}, err
	}
	b := Block{Kind: kind, Sentences: []string{s}}
	a.words += b.WordCount()
	return b, nil
}
