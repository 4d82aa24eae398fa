package order

import (
	"errors"
	"time"

	"github.com/martingallagher/warehouse/internal/domain/identity"
)

var (
	ErrNotFound = errors.New("order: not found")

	// ErrViewRestricted carries the caller-facing contract message verbatim.
	ErrViewRestricted = errors.New("Only the order customer or the warehouse manager can view the order.")
)

// Order is a customer's purchase record. IDs are assigned by the
// repository in append order, in a namespace independent from products.
// AmountPaid equals the product's price at creation time and never changes.
type Order struct {
	ID         int64
	ProductID  int64
	Customer   identity.Actor
	Shipped    bool
	AmountPaid int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func New(productID int64, customer identity.Actor, amountPaid int64) *Order {
	now := time.Now().UTC()
	return &Order{
		ProductID:  productID,
		Customer:   customer,
		Shipped:    false,
		AmountPaid: amountPaid,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Ship marks the order as fulfilled. Shipping an already-shipped order
// is a no-op; the shipped flag is one-way.
func (o *Order) Ship() {
	if o.Shipped {
		return
	}
	o.Shipped = true
	o.touch()
}

// ViewableBy reports whether the caller may read this order.
func (o *Order) ViewableBy(caller identity.Actor, access *identity.AccessControl) bool {
	return caller == o.Customer || access.IsManager(caller)
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
