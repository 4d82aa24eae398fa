package catalog

import "time"

// NewProductEvent is emitted when a product is appended to the catalog.
type NewProductEvent struct {
	ProductID  int64
	Name       string
	Price      int64
	Stock      int64
	OccurredAt time.Time
}

func (NewProductEvent) EventName() string { return "catalog.new_product" }

func NewNewProductEvent(p *Product) NewProductEvent {
	return NewProductEvent{
		ProductID:  p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		OccurredAt: time.Now().UTC(),
	}
}
