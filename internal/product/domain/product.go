package domain

import (
	"context"

	"github.com/google/uuid"
)

// Product is a catalog entry owned by a farmer. The auction engine only
// reads products, the catalog write side lives elsewhere.
type Product struct {
	ID          uuid.UUID
	FarmerID    uuid.UUID
	Title       string
	Description string
}

type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
}
