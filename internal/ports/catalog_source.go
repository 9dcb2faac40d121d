package ports

import (
	"context"
	"order-lookup-service/internal/domain"
)

// Contract for producing the order catalog at startup.
type CatalogLoader interface {
	Load(ctx context.Context) (*domain.Catalog, error)
}
