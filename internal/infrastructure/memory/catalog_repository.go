package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/martingallagher/warehouse/internal/domain/catalog"
)

// CatalogRepository is an append-only product store. The slice index is
// the product id, so ids start at zero and are never reused.
type CatalogRepository struct {
	mu       sync.RWMutex
	products []*domain.Product
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{}
}

func (r *CatalogRepository) Append(ctx context.Context, p *domain.Product) (int64, error) {
	_ = ctx
	if p == nil {
		return 0, fmt.Errorf("catalog repository: product is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := int64(len(r.products))
	p.ID = id
	r.products = append(r.products, p.Clone())
	return id, nil
}

func (r *CatalogRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 0 || id >= int64(len(r.products)) {
		return nil, domain.ErrNotFound
	}

	return r.products[id].Clone(), nil
}

func (r *CatalogRepository) Update(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil {
		return fmt.Errorf("catalog repository: product is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID < 0 || p.ID >= int64(len(r.products)) {
		return domain.ErrNotFound
	}

	r.products[p.ID] = p.Clone()
	return nil
}

// Len reports the number of products ever appended.
func (r *CatalogRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}
