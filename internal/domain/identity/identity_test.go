package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireManager(t *testing.T) {
	access := NewAccessControl("manager")

	require.NoError(t, access.RequireManager("manager"))

	err := access.RequireManager("customer")
	require.ErrorIs(t, err, ErrManagerOnly)
	assert.Equal(t, "Only the warehouse manager can perform this function.", err.Error())
}

func TestIsManager(t *testing.T) {
	access := NewAccessControl("manager")

	assert.True(t, access.IsManager("manager"))
	assert.False(t, access.IsManager("customer"))
	assert.False(t, access.IsManager(""))
	assert.Equal(t, Actor("manager"), access.Manager())
}
