package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
)

// Nombres de colección.
const (
	CollectionSales     = "sales"
	CollectionSaleItems = "sale_items"
	CollectionBatches   = "product_batches"
	CollectionProducts  = "products"
)

// SalesDataRepository lee las cuatro colecciones. Los documentos se decodifican como bson.M
// porque el mismo campo llega como ObjectId, string o número según el script que lo cargó.
type SalesDataRepository struct {
	db *mongo.Database
}

var _ repository.SalesDataRepository = (*SalesDataRepository)(nil)

// NewSalesDataRepository crea el repositorio sobre la base de datos indicada.
func NewSalesDataRepository(client *mongo.Client, database string) *SalesDataRepository {
	return &SalesDataRepository{db: client.Database(database)}
}

func (r *SalesDataRepository) ListSales(ctx context.Context) ([]entity.Sale, error) {
	docs, err := r.findAll(ctx, CollectionSales)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Sale, 0, len(docs))
	for _, d := range docs {
		s, err := decodeSale(d)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *SalesDataRepository) ListSaleItems(ctx context.Context) ([]entity.SaleItem, error) {
	docs, err := r.findAll(ctx, CollectionSaleItems)
	if err != nil {
		return nil, err
	}
	out := make([]entity.SaleItem, 0, len(docs))
	for _, d := range docs {
		it, err := decodeSaleItem(d)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (r *SalesDataRepository) ListBatches(ctx context.Context) ([]entity.StockBatch, error) {
	docs, err := r.findAll(ctx, CollectionBatches)
	if err != nil {
		return nil, err
	}
	out := make([]entity.StockBatch, 0, len(docs))
	for _, d := range docs {
		out = append(out, decodeBatch(d))
	}
	return out, nil
}

func (r *SalesDataRepository) ListProducts(ctx context.Context) ([]entity.Product, error) {
	docs, err := r.findAll(ctx, CollectionProducts)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, decodeProduct(d))
	}
	return out, nil
}

func (r *SalesDataRepository) findAll(ctx context.Context, collection string) ([]bson.M, error) {
	cur, err := r.db.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", collection, err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode %s: %w", collection, err)
	}
	return docs, nil
}
