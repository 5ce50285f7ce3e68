package corpus

import (
	"strings"
)

// DefaultBanned catches author's notes, chapter labels and review begging
// that slip through paragraph extraction.
var DefaultBanned = []string{
	"A/N",
	"Author's Note",
	"Author's note",
	"Disclaimer",
	"disclaimer",
	"Chapter ",
	"CHAPTER",
	"review",
	"Review",
}

// Splitter turns one paragraph's raw lines into sentences.
type Splitter interface {
	SplitParagraph(lines []string) []string
}

// Classifier files sentences into buckets by position.
type Classifier struct {
	banned   []string
	minWords int
}

// ClassifierConfig holds configuration for the classifier.
type ClassifierConfig struct {
	// Banned substrings, matched case-sensitively.
	Banned []string
	// MinWords discards sentences with fewer words. Zero disables it.
	MinWords int
}

// NewClassifier creates a new Classifier.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	banned := make([]string, 0, len(cfg.Banned))
	for _, term := range cfg.Banned {
		if term != "" {
			banned = append(banned, term)
		}
	}

	return &Classifier{
		banned:   banned,
		minWords: cfg.MinWords,
	}
}

// Excluded reports whether a sentence is dropped before classification.
func (c *Classifier) Excluded(sentence string) bool {
	for _, term := range c.banned {
		if strings.Contains(sentence, term) {
			return true
		}
	}
	if c.minWords > 0 && len(strings.Fields(sentence)) < c.minWords {
		return true
	}
	return false
}

// Classify files the sentences of one source document. Each element of
// paragraphs is one paragraph's sentences in order. Paragraphs without
// sentences do not count toward positions.
func (c *Classifier) Classify(paragraphs [][]string) *Corpus {
	result := New()

	nonEmpty := make([][]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if len(p) > 0 {
			nonEmpty = append(nonEmpty, p)
		}
	}

	n := len(nonEmpty)
	for p, sentences := range nonEmpty {
		m := len(sentences)
		for i, sentence := range sentences {
			if c.Excluded(sentence) {
				continue
			}
			result.Add(Assign(sentence, p, i, n, m), sentence)
		}
	}

	return result
}

// ClassifyDocument segments each paragraph's raw lines and classifies the
// result.
func (c *Classifier) ClassifyDocument(paragraphs [][]string, splitter Splitter) *Corpus {
	segmented := make([][]string, len(paragraphs))
	for i, lines := range paragraphs {
		segmented[i] = splitter.SplitParagraph(lines)
	}
	return c.Classify(segmented)
}

// Assign returns the bucket for sentence i of m in paragraph p of n.
// The first matching rule wins.
func Assign(sentence string, p, i, n, m int) Bucket {
	switch {
	case p == 0 && i == 0:
		return StartChapter
	case p == n-1 && i == m-1:
		return EndChapter
	case strings.Contains(sentence, `"`):
		return Dialogue
	case m == 1:
		return Solitary
	case i == 0:
		return StartParagraph
	case i == m-1:
		return EndParagraph
	default:
		return MidParagraph
	}
}
