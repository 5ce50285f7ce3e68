package corpus

import "fmt"

// EmptyBucketError reports a bucket with no sentences to sample from.
type EmptyBucketError struct {
	Bucket Bucket
}

func (e *EmptyBucketError) Error() string {
	return fmt.Sprintf("bucket %s is empty", e.Bucket)
}

// CorpusUnavailableError reports a persisted corpus that is missing or
// cannot be decoded.
type CorpusUnavailableError struct {
	Path string
	Err  error
}

func (e *CorpusUnavailableError) Error() string {
	return fmt.Sprintf("corpus unavailable at %s: %v", e.Path, e.Err)
}

func (e *CorpusUnavailableError) Unwrap() error {
	return e.Err
}
