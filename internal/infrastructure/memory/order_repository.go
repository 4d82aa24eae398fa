package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/martingallagher/warehouse/internal/domain/order"
)

// OrderRepository is an append-only order store with its own id
// namespace, independent from the catalog's.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []*domain.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) Append(ctx context.Context, o *domain.Order) (int64, error) {
	_ = ctx
	if o == nil {
		return 0, fmt.Errorf("order repository: order is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := int64(len(r.orders))
	o.ID = id
	r.orders = append(r.orders, o.Clone())
	return id, nil
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 0 || id >= int64(len(r.orders)) {
		return nil, domain.ErrNotFound
	}

	return r.orders[id].Clone(), nil
}

func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	_ = ctx
	if o == nil {
		return fmt.Errorf("order repository: order is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if o.ID < 0 || o.ID >= int64(len(r.orders)) {
		return domain.ErrNotFound
	}

	r.orders[o.ID] = o.Clone()
	return nil
}

// Len reports the number of orders ever appended.
func (r *OrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
