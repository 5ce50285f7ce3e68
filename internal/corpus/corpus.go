// Package corpus holds classified sentences, grouped by structural role.
package corpus

// Rand picks an index in [0, n).
type Rand interface {
	IntN(n int) int
}

// Corpus maps every bucket to its sentences in discovery order.
type Corpus struct {
	buckets map[Bucket][]string
}

// New creates an empty corpus with all buckets present.
func New() *Corpus {
	c := &Corpus{buckets: make(map[Bucket][]string, len(Buckets))}
	for _, b := range Buckets {
		c.buckets[b] = []string{}
	}
	return c
}

// Add appends a sentence to a bucket.
func (c *Corpus) Add(b Bucket, sentence string) {
	c.buckets[b] = append(c.buckets[b], sentence)
}

// Len returns the number of sentences in a bucket.
func (c *Corpus) Len(b Bucket) int {
	return len(c.buckets[b])
}

// Total returns the number of sentences across all buckets.
func (c *Corpus) Total() int {
	total := 0
	for _, b := range Buckets {
		total += len(c.buckets[b])
	}
	return total
}

// Sentences returns a copy of a bucket's sentences.
func (c *Corpus) Sentences(b Bucket) []string {
	out := make([]string, len(c.buckets[b]))
	copy(out, c.buckets[b])
	return out
}

// Counts returns the size of every bucket.
func (c *Corpus) Counts() map[Bucket]int {
	counts := make(map[Bucket]int, len(Buckets))
	for _, b := range Buckets {
		counts[b] = len(c.buckets[b])
	}
	return counts
}

// Merge appends other's sentences to c, bucket by bucket, keeping order.
func (c *Corpus) Merge(other *Corpus) {
	if other == nil {
		return
	}
	for _, b := range Buckets {
		c.buckets[b] = append(c.buckets[b], other.buckets[b]...)
	}
}

// Validate returns an EmptyBucketError for the first empty bucket in
// taxonomy order.
func (c *Corpus) Validate() error {
	for _, b := range Buckets {
		if len(c.buckets[b]) == 0 {
			return &EmptyBucketError{Bucket: b}
		}
	}
	return nil
}

// Sample returns a uniformly chosen sentence from a bucket.
func (c *Corpus) Sample(b Bucket, rng Rand) (string, error) {
	sentences := c.buckets[b]
	if len(sentences) == 0 {
		return "", &EmptyBucketError{Bucket: b}
	}
	return sentences[rng.IntN(len(sentences))], nil
}

// Equal reports whether both corpora hold the same sentences in the same
// order.
func (c *Corpus) Equal(other *Corpus) bool {
	if other == nil {
		return false
	}
	for _, b := range Buckets {
		left, right := c.buckets[b], other.buckets[b]
		if len(left) != len(right) {
			return false
		}
		for i := range left {
			if left[i] != right[i] {
				return false
			}
		}
	}
	return true
}
