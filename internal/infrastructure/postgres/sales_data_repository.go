package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/ident"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
)

var _ repository.SalesDataRepository = (*SalesDataRepo)(nil)

// SalesDataRepo lectura de sales, sale_items, product_batches y products sobre PostgreSQL.
// Los IDs se leen como TEXT para que UUID, SERIAL y hex de ObjectId migrados compartan la misma clave canónica.
type SalesDataRepo struct {
	pool *pgxpool.Pool
}

// NewSalesDataRepository construye el adaptador.
func NewSalesDataRepository(pool *pgxpool.Pool) *SalesDataRepo {
	return &SalesDataRepo{pool: pool}
}

func (r *SalesDataRepo) ListSales(ctx context.Context) ([]entity.Sale, error) {
	const query = `
	SELECT id::TEXT, sale_date, COALESCE(total_amount, 0)
	FROM sales
	ORDER BY sale_date`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, wrapQueryError("sales", err)
	}
	defer rows.Close()

	var out []entity.Sale
	for rows.Next() {
		var (
			s    entity.Sale
			date time.Time
		)
		if err := rows.Scan(&s.ID, &date, &s.TotalAmount); err != nil {
			return nil, fmt.Errorf("salesdata.ListSales scan: %w", err)
		}
		s.ID = ident.Canonical(s.ID)
		s.SaleDate = date.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SalesDataRepo) ListSaleItems(ctx context.Context) ([]entity.SaleItem, error) {
	const query = `
	SELECT id::TEXT, sale_id::TEXT, batch_id::TEXT, ROUND(COALESCE(quantity, 0))::BIGINT
	FROM sale_items`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, wrapQueryError("sale_items", err)
	}
	defer rows.Close()

	var out []entity.SaleItem
	for rows.Next() {
		var (
			it             entity.SaleItem
			saleID, batchID *string
		)
		if err := rows.Scan(&it.ID, &saleID, &batchID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("salesdata.ListSaleItems scan: %w", err)
		}
		it.ID = ident.Canonical(it.ID)
		it.SaleID = ident.Canonical(saleID)
		it.BatchID = ident.Canonical(batchID)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *SalesDataRepo) ListBatches(ctx context.Context) ([]entity.StockBatch, error) {
	const query = `
	SELECT
	    id::TEXT,
	    product_id::TEXT,
	    COALESCE(batch_number, ''),
	    COALESCE(barcode, ''),
	    quantity_in_stock::FLOAT8,
	    COALESCE(mrp, 0),
	    expiry_date
	FROM product_batches`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, wrapQueryError("product_batches", err)
	}
	defer rows.Close()

	var out []entity.StockBatch
	for rows.Next() {
		var (
			b         entity.StockBatch
			productID *string
			stock     *float64
			mrp       decimal.Decimal
			expiry    *time.Time
		)
		if err := rows.Scan(&b.ID, &productID, &b.BatchNumber, &b.Barcode, &stock, &mrp, &expiry); err != nil {
			return nil, fmt.Errorf("salesdata.ListBatches scan: %w", err)
		}
		b.ID = ident.Canonical(b.ID)
		b.ProductID = ident.Canonical(productID)
		if stock != nil {
			b.QuantityInStock = entity.StockFromFloat(*stock)
		}
		b.MRP = mrp
		if expiry != nil {
			e := expiry.UTC()
			b.ExpiryDate = &e
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SalesDataRepo) ListProducts(ctx context.Context) ([]entity.Product, error) {
	const query = `
	SELECT
	    id::TEXT,
	    COALESCE(product_name, ''),
	    COALESCE(category, ''),
	    COALESCE(hsn_code, ''),
	    COALESCE(description, '')
	FROM products`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, wrapQueryError("products", err)
	}
	defer rows.Close()

	var out []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.HSNCode, &p.Description); err != nil {
			return nil, fmt.Errorf("salesdata.ListProducts scan: %w", err)
		}
		p.ID = ident.Canonical(p.ID)
		out = append(out, p)
	}
	return out, rows.Err()
}
