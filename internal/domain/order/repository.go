package order

import "context"

// Repository is an append-only, index-addressed order store.
// Append assigns the next sequential id and returns it.
type Repository interface {
	Append(ctx context.Context, o *Order) (int64, error)
	Get(ctx context.Context, id int64) (*Order, error)
	Update(ctx context.Context, o *Order) error
}
