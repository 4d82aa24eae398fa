package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	require.NoError(t, Verify(10000, 10000))

	err := Verify(1000, 10000)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, "Insufficient funds.", err.Error())

	// Overpayment is rejected as well; the ledger has no change-making path.
	require.ErrorIs(t, Verify(20000, 10000), ErrInsufficientFunds)
}

func TestBalanceCapture(t *testing.T) {
	var b Balance

	assert.Equal(t, int64(0), b.Held())
	b.Capture(10000)
	b.Capture(500000)
	assert.Equal(t, int64(510000), b.Held())
}
