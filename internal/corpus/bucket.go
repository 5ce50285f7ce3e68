package corpus

import "fmt"

// Bucket is one category of the sentence taxonomy.
type Bucket string

const (
	StartChapter   Bucket = "start_chapter"
	EndChapter     Bucket = "end_chapter"
	Solitary       Bucket = "solitary"
	Dialogue       Bucket = "dialogue"
	StartParagraph Bucket = "start_paragraph"
	EndParagraph   Bucket = "end_paragraph"
	MidParagraph   Bucket = "mid_paragraph"
)

// Buckets lists the taxonomy in its canonical order.
var Buckets = []Bucket{
	StartChapter,
	EndChapter,
	Solitary,
	Dialogue,
	StartParagraph,
	EndParagraph,
	MidParagraph,
}

// ParseBucket returns the bucket with the given name.
func ParseBucket(name string) (Bucket, error) {
	for _, b := range Buckets {
		if string(b) == name {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown bucket %q", name)
}

// Valid reports whether b is part of the taxonomy.
func (b Bucket) Valid() bool {
	_, err := ParseBucket(string(b))
	return err == nil
}

func (b Bucket) String() string {
	return string(b)
}
