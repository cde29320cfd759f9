package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ReferenceRepository tracks gateway references that have already been
// reconciled, so a return-URL reload cannot re-trigger verification.
type ReferenceRepository struct {
	client *redis.Client
}

// NewReferenceRepository constructs the repository.
func NewReferenceRepository(client *redis.Client) *ReferenceRepository {
	return &ReferenceRepository{client: client}
}

// MarkProcessed records the reference and reports whether this call was the
// first to do so. References are kept indefinitely; they are unique per
// attempt and never reused.
func (r *ReferenceRepository) MarkProcessed(ctx context.Context, reference string) (bool, error) {
	first, err := r.client.SetNX(ctx, "processed_ref:"+reference, "1", 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis mark reference: %w", err)
	}
	return first, nil
}
