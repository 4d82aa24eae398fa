package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("catalog: product not found")
	ErrNegativePrice = errors.New("catalog: price must be zero or greater")
	ErrNegativeStock = errors.New("catalog: stock must be zero or greater")
	ErrEmptyName     = errors.New("catalog: name is required")

	// ErrOutOfStock carries the caller-facing contract message verbatim.
	ErrOutOfStock = errors.New("Product is out of stock.")
)

// Product is a catalog entry. IDs are assigned by the repository in
// append order, starting at zero, and are never reused.
type Product struct {
	ID        int64
	Price     int64 // smallest currency unit
	Stock     int64
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(price, stock int64, name string) (*Product, error) {
	if price < 0 {
		return nil, ErrNegativePrice
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}
	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now().UTC()
	return &Product{
		Price:     price,
		Stock:     stock,
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetStock replaces the stock count. The new value only has to be a
// valid non-negative count.
func (p *Product) SetStock(stock int64) error {
	if stock < 0 {
		return ErrNegativeStock
	}
	p.Stock = stock
	p.touch()
	return nil
}

// Deduct removes one unit of stock for a captured order.
func (p *Product) Deduct() error {
	if p.Stock <= 0 {
		return ErrOutOfStock
	}
	p.Stock--
	p.touch()
	return nil
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
