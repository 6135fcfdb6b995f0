package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-portal/internal/entities"
	"equipment-portal/pkg/types"
)

type fakeActivityRepo struct {
	inserted []entities.ActivityEntry
	total    uint64
	before   time.Time
}

func (f *fakeActivityRepo) Insert(_ context.Context, e entities.ActivityEntry) (int64, error) {
	f.inserted = append(f.inserted, e)
	return int64(len(f.inserted)), nil
}

func (f *fakeActivityRepo) List(context.Context, types.Filter) ([]entities.ActivityEntry, uint64, error) {
	return f.inserted, f.total, nil
}

func (f *fakeActivityRepo) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	f.before = before
	return 3, nil
}

func TestActivityService(t *testing.T) {
	repo := &fakeActivityRepo{total: 45}
	s := NewActivityService(repo, zap.NewNop())
	s.now = func() time.Time { return testNow }
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, entities.ActivityEntry{Action: "disposed", EntityType: "equipment", EntityID: "4"}))
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, testNow, repo.inserted[0].CreatedAt)

	_, pagination, err := s.List(ctx, types.Filter{Page: 2, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, uint64(45), pagination.TotalCount)

	n, err := s.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, testNow.Add(-24*time.Hour), repo.before)

	n, err = s.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}
