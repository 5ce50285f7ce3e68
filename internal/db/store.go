package db

import (
	"context"

	"github.com/google/uuid"
)

// RecordStory stores a generated story under a fresh UUID.
func (s *Store) RecordStory(ctx context.Context, arg CreateStoryParams) (*Story, error) {
	arg.ID = uuid.NewString()
	return s.CreateStory(ctx, arg)
}
