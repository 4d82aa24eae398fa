package order

import (
	"testing"

	"github.com/martingallagher/warehouse/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	o := New(3, identity.Actor("customer"), 10000)

	assert.Equal(t, int64(3), o.ProductID)
	assert.Equal(t, identity.Actor("customer"), o.Customer)
	assert.Equal(t, int64(10000), o.AmountPaid)
	assert.False(t, o.Shipped)
}

func TestShipIsOneWay(t *testing.T) {
	o := New(0, identity.Actor("customer"), 10000)

	o.Ship()
	assert.True(t, o.Shipped)

	shippedAt := o.UpdatedAt
	o.Ship()
	assert.True(t, o.Shipped)
	assert.Equal(t, shippedAt, o.UpdatedAt)
}

func TestViewableBy(t *testing.T) {
	access := identity.NewAccessControl("manager")
	o := New(0, identity.Actor("customer"), 10000)

	assert.True(t, o.ViewableBy("customer", access))
	assert.True(t, o.ViewableBy("manager", access))
	assert.False(t, o.ViewableBy("other-customer", access))
}

func TestCloneIsolation(t *testing.T) {
	o := New(0, identity.Actor("customer"), 10000)

	clone := o.Clone()
	clone.Ship()

	require.False(t, o.Shipped)
	require.True(t, clone.Shipped)
}
