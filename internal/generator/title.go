package generator

import (
	"fmt"
	"strings"

	"github.com/abdulachik/cadavre/internal/corpus"
)

const defaultTitleAttempts = 1000

var titleStripper = strings.NewReplacer(",", "", ".", "", `"`, "")

// TitleExtractionError reports that no dialogue sentence yielded a usable
// quoted span within the attempt budget.
type TitleExtractionError struct {
	Attempts int
}

func (e *TitleExtractionError) Error() string {
	return fmt.Sprintf("no quoted title found in dialogue after %d attempts", e.Attempts)
}

// TitleExtractor pulls titles out of quoted dialogue.
type TitleExtractor struct {
	rng         Rand
	maxAttempts int
}

// NewTitleExtractor creates a TitleExtractor. maxAttempts <= 0 uses the
// default budget.
func NewTitleExtractor(rng Rand, maxAttempts int) *TitleExtractor {
	if maxAttempts <= 0 {
		maxAttempts = defaultTitleAttempts
	}
	return &TitleExtractor{rng: rng, maxAttempts: maxAttempts}
}

// Extract samples dialogue until a sentence holds a quoted span that is
// non-empty after stripping commas, periods and quotes.
func (t *TitleExtractor) Extract(c *corpus.Corpus) (string, error) {
	for attempt := 0; attempt < t.maxAttempts; attempt++ {
		sentence, err := c.Sample(corpus.Dialogue, t.rng)
		if err != nil {
			return "", err
		}

		if title, ok := TitleFrom(sentence); ok {
			return title, nil
		}
	}

	return "", &TitleExtractionError{Attempts: t.maxAttempts}
}

// TitleFrom returns the cleaned first quoted span of sentence.
func TitleFrom(sentence string) (string, bool) {
	span, ok := quotedSpan(sentence)
	if !ok {
		return "", false
	}

	title := strings.TrimSpace(titleStripper.Replace(span))
	if title == "" {
		return "", false
	}
	return title, true
}

// quotedSpan returns the text between the first two double quotes.
func quotedSpan(s string) (string, bool) {
	open := strings.IndexByte(s, '"')
	if open < 0 {
		return "", false
	}
	closing := strings.IndexByte(s[open+1:], '"')
	if closing < 0 {
		return "", false
	}
	return s[open+1 : open+1+closing], true
}
