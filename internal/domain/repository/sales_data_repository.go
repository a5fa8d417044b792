package repository

import (
	"context"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

// SalesDataRepository define el puerto de lectura de las cuatro colecciones que alimentan
// el pipeline de reorden. Las implementaciones son read-only y devuelven IDs ya canonicalizados.
type SalesDataRepository interface {
	ListSales(ctx context.Context) ([]entity.Sale, error)
	ListSaleItems(ctx context.Context) ([]entity.SaleItem, error)
	ListBatches(ctx context.Context) ([]entity.StockBatch, error)
	ListProducts(ctx context.Context) ([]entity.Product, error)
}
