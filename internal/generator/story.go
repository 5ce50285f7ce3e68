package generator

import (
	"strings"
)

// BlockKind identifies what a block was assembled from.
type BlockKind string

const (
	KindOpening   BlockKind = "opening"
	KindSolitary  BlockKind = "solitary"
	KindDialogue  BlockKind = "dialogue"
	KindParagraph BlockKind = "paragraph"
	KindClosing   BlockKind = "closing"
	KindTheEnd    BlockKind = "the_end"
)

// TheEnd is the text of the block appended after the last chapter.
const TheEnd = "The End"

// Block is one rendered unit of a chapter: a line of dialogue, a lone
// sentence, or a paragraph of several sentences.
type Block struct {
	Kind      BlockKind
	Sentences []string
}

// Text joins the block's sentences with single spaces.
func (b Block) Text() string {
	return strings.Join(b.Sentences, " ")
}

// WordCount counts whitespace separated words in the block.
func (b Block) WordCount() int {
	n := 0
	for _, s := range b.Sentences {
		n += len(strings.Fields(s))
	}
	return n
}

// Chapter is a titled sequence of blocks.
type Chapter struct {
	Number int
	Title  string
	Blocks []Block
}

// WordCount counts the words of the chapter's blocks. The title is not
// counted.
func (c Chapter) WordCount() int {
	n := 0
	for _, b := range c.Blocks {
		n += b.WordCount()
	}
	return n
}

// Story is a generated novel.
type Story struct {
	Title    string
	Chapters []Chapter
	Closing  Block
}

// WordCount counts the words of every chapter. Titles and the closing
// marker are not counted.
func (s *Story) WordCount() int {
	n := 0
	for _, c := range s.Chapters {
		n += c.WordCount()
	}
	return n
}

// Stats summarizes a story.
type Stats struct {
	Chapters   int
	Blocks     int
	Sentences  int
	Words      int
	Paragraphs int
	Dialogue   int
	Solitary   int
}

// Stats counts the story's chapters, blocks and words.
func (s *Story) Stats() Stats {
	st := Stats{Chapters: len(s.Chapters)}
	for _, c := range s.Chapters {
		st.Blocks += len(c.Blocks)
		for _, b := range c.Blocks {
			st.Sentences += len(b.Sentences)
			switch b.Kind {
			case KindParagraph:
				st.Paragraphs++
			case KindDialogue:
				st.Dialogue++
			case KindSolitary:
				st.Solitary++
			}
		}
	}
	st.Words = s.WordCount()
	return st
}
