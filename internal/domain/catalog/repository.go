package catalog

import "context"

// Repository is an append-only, index-addressed product store.
// Append assigns the next sequential id and returns it.
type Repository interface {
	Append(ctx context.Context, p *Product) (int64, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, p *Product) error
}
