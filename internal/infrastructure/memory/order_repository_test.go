package memory

import (
	"context"
	"testing"

	"github.com/martingallagher/warehouse/internal/domain/identity"
	domain "github.com/martingallagher/warehouse/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderAppendAssignsSequentialIDs(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	for i := int64(0); i < 3; i++ {
		o := domain.New(0, identity.Actor("customer"), 10000)

		id, err := repo.Append(ctx, o)
		require.NoError(t, err)
		assert.Equal(t, i, id)
	}

	assert.Equal(t, 3, repo.Len())
}

func TestOrderGetUnknownID(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, 0)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderUpdate(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	o := domain.New(0, identity.Actor("customer"), 10000)
	id, err := repo.Append(ctx, o)
	require.NoError(t, err)

	o.Ship()
	require.NoError(t, repo.Update(ctx, o))

	stored, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Shipped)

	missing := domain.New(0, identity.Actor("customer"), 10000)
	missing.ID = 42
	require.ErrorIs(t, repo.Update(ctx, missing), domain.ErrNotFound)
}

func TestOrderCloneIsolation(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	o := domain.New(0, identity.Actor("customer"), 10000)
	id, err := repo.Append(ctx, o)
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	got.Ship()

	again, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, again.Shipped)
}
