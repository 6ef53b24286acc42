// Package memory is the in-memory product catalog used by tests and the
// standalone demo mode.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	auctiondomain "github.com/farmgate/bidEngine/internal/auction/domain"
	"github.com/farmgate/bidEngine/internal/product/domain"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, auctiondomain.ErrProductNotFound
	}
	return p, nil
}

// Put seeds a product, the catalog write side is out of scope for the engine
func (r *ProductRepository) Put(p *domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}
