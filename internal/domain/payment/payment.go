package payment

import "errors"

// ErrInsufficientFunds carries the caller-facing contract message verbatim.
var ErrInsufficientFunds = errors.New("Insufficient funds.")

// Verify checks an attached payment against the quoted price. The amount
// must match exactly; there is no refund path for change, so overpayment
// is rejected along with underpayment.
func Verify(attached, price int64) error {
	if attached != price {
		return ErrInsufficientFunds
	}
	return nil
}

// Balance accumulates captured payments. Withdrawal is out of scope, so
// the held value only ever grows.
type Balance struct {
	held int64
}

func (b *Balance) Capture(amount int64) {
	b.held += amount
}

func (b *Balance) Held() int64 { return b.held }
