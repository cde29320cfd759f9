package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkProcessedFirstCallerWins(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewReferenceRepository(client)
	ctx := context.Background()

	first, err := repo.MarkProcessed(ctx, "PRJ_1_AAAAAA")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.MarkProcessed(ctx, "PRJ_1_AAAAAA")
	require.NoError(t, err)
	assert.False(t, second)

	// Distinct references are independent.
	other, err := repo.MarkProcessed(ctx, "PRJ_2_BBBBBB")
	require.NoError(t, err)
	assert.True(t, other)
}
