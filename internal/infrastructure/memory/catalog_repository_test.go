package memory

import (
	"context"
	"testing"

	domain "github.com/martingallagher/warehouse/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogAppendAssignsSequentialIDs(t *testing.T) {
	repo := NewCatalogRepository()
	ctx := context.Background()

	for i := int64(0); i < 3; i++ {
		p, err := domain.New(100*(i+1), i, "Widget")
		require.NoError(t, err)

		id, err := repo.Append(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, i, id)
		assert.Equal(t, i, p.ID)
	}

	assert.Equal(t, 3, repo.Len())
}

func TestCatalogGetUnknownID(t *testing.T) {
	repo := NewCatalogRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, 0)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Get(ctx, -1)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogUpdate(t *testing.T) {
	repo := NewCatalogRepository()
	ctx := context.Background()

	p, err := domain.New(1000000, 1, "Widget")
	require.NoError(t, err)
	_, err = repo.Append(ctx, p)
	require.NoError(t, err)

	require.NoError(t, p.SetStock(99))
	require.NoError(t, repo.Update(ctx, p))

	stored, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(99), stored.Stock)

	missing, err := domain.New(1, 1, "Ghost")
	require.NoError(t, err)
	missing.ID = 42
	require.ErrorIs(t, repo.Update(ctx, missing), domain.ErrNotFound)
}

func TestCatalogCloneIsolation(t *testing.T) {
	repo := NewCatalogRepository()
	ctx := context.Background()

	p, err := domain.New(10000, 5, "Widget")
	require.NoError(t, err)
	id, err := repo.Append(ctx, p)
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NoError(t, got.Deduct())

	again, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(5), again.Stock)
}
