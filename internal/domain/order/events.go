package order

import (
	"time"

	"github.com/martingallagher/warehouse/internal/domain/identity"
)

// NewOrderEvent is emitted when an order is created and its payment captured.
type NewOrderEvent struct {
	OrderID    int64
	Customer   identity.Actor
	ProductID  int64
	AmountPaid int64
	OccurredAt time.Time
}

func (NewOrderEvent) EventName() string { return "order.new_order" }

func NewNewOrderEvent(o *Order) NewOrderEvent {
	return NewOrderEvent{
		OrderID:    o.ID,
		Customer:   o.Customer,
		ProductID:  o.ProductID,
		AmountPaid: o.AmountPaid,
		OccurredAt: time.Now().UTC(),
	}
}
