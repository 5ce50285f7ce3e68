// Package segment splits raw prose into sentences with a single regular
// expression.
package segment

import (
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// sentencePattern matches one sentence.
//
// The repeated group consumes, in order of preference:
//   - any character that is not a terminator or a double quote
//   - a double-quoted span that does not end in a terminator ("Yes")
//   - a double-quoted span ending in a terminator that is not followed by
//     whitespace or end of text ("Stop!",)
//   - an unmatched double quote
//   - a terminator not followed by an optional quote and whitespace/end
//
// The sentence must then end in a terminator, optionally closed by a quote,
// or in a quoted span ending in a terminator, and be followed by whitespace
// or end of text.
const sentencePattern = `(?:[^.!?"]` +
	`|"(?:[^"]*[^.!?"])?"` +
	`|"[^"]*[.!?]"(?!\s|$)` +
	`|"(?![^"]*")` +
	`|[.!?](?!['"]?(?:\s|$)))*` +
	`(?:"[^"]*[.!?]"|[.!?]['"]?)` +
	`(?=\s|$)`

const defaultMatchTimeout = 2 * time.Second

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Segmenter splits text into sentences.
type Segmenter struct {
	re *regexp2.Regexp
}

// Config holds configuration for the segmenter.
type Config struct {
	// MatchTimeout bounds a single regex match. Zero uses the default.
	MatchTimeout time.Duration
}

// New creates a new Segmenter.
func New(cfg Config) *Segmenter {
	re := regexp2.MustCompile(sentencePattern, regexp2.None)
	re.MatchTimeout = cfg.MatchTimeout
	if re.MatchTimeout <= 0 {
		re.MatchTimeout = defaultMatchTimeout
	}
	return &Segmenter{re: re}
}

// Default returns a segmenter with default settings.
func Default() *Segmenter {
	return New(Config{})
}

// Split returns the sentences of text in order. Text without a terminator
// yields no sentences.
func (s *Segmenter) Split(text string) []string {
	text = terminated(lineBreaks.Replace(text))
	if text == "" {
		return nil
	}

	var sentences []string
	m, err := s.re.FindStringMatch(text)
	for m != nil && err == nil {
		if sentence := strings.TrimSpace(m.String()); sentence != "" {
			sentences = append(sentences, sentence)
		}
		m, err = s.re.FindNextMatch(m)
	}
	if err != nil {
		// Only a match timeout lands here; keep what was found.
		slog.Warn("sentence segmentation stopped early",
			"found", len(sentences),
			"error", err,
		)
	}

	return sentences
}

// terminated cuts text after its last possible sentence end: a terminator,
// optionally closed by a quote, followed by whitespace or end of text. No
// match can end in the tail, and scanning an unterminated tail costs time
// quadratic in its length. A tail holding a double quote is kept, since the
// quote lookaheads may see it.
func terminated(text string) string {
	for i := len(text) - 1; i >= 0; i-- {
		switch text[i] {
		case '.', '!', '?':
		default:
			continue
		}

		end := -1
		switch next := i + 1; {
		case next < len(text) && (text[next] == '"' || text[next] == '\'') && endsAt(text, next+1):
			end = next + 1
		case endsAt(text, next):
			end = next
		}
		if end < 0 {
			continue
		}

		if strings.ContainsRune(text[end:], '"') {
			return text
		}
		return text[:end]
	}
	return ""
}

// endsAt reports whether text[i:] is empty or starts with whitespace.
func endsAt(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return unicode.IsSpace(r)
}

// SplitParagraph joins the raw lines of one paragraph with single spaces and
// splits the result.
func (s *Segmenter) SplitParagraph(lines []string) []string {
	return s.Split(strings.Join(lines, " "))
}
