package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/ident"
)

// OnHand existencias de un producto sumadas sobre todos sus lotes.
type OnHand struct {
	Quantity int64           // Σ quantity_in_stock (cada lote >= 0)
	Value    decimal.Decimal // Σ quantity_in_stock × MRP
	Batches  int
	// NextExpiry vencimiento más próximo entre los lotes con existencias; nil si ninguno lo informa.
	NextExpiry *time.Time
}

// AvgMRP precio de venta medio ponderado por existencias; cero si no hay stock.
func (o OnHand) AvgMRP() decimal.Decimal {
	if o.Quantity <= 0 {
		return decimal.Zero
	}
	return o.Value.Div(decimal.NewFromInt(o.Quantity))
}

// StockIndex agrupa las existencias por producto (clave canónica).
type StockIndex map[string]OnHand

// IndexStock recorre los lotes una sola vez. Cantidades negativas cuentan como 0.
func IndexStock(batches []entity.StockBatch) StockIndex {
	idx := make(StockIndex)
	for _, b := range batches {
		key := ident.Canonical(b.ProductID)
		if key == "" {
			continue
		}
		qty := b.QuantityInStock
		if qty < 0 {
			qty = 0
		}
		cur := idx[key]
		cur.Quantity += qty
		cur.Value = cur.Value.Add(b.MRP.Mul(decimal.NewFromInt(qty)))
		cur.Batches++
		if qty > 0 && b.ExpiryDate != nil && (cur.NextExpiry == nil || b.ExpiryDate.Before(*cur.NextExpiry)) {
			exp := *b.ExpiryDate
			cur.NextExpiry = &exp
		}
		idx[key] = cur
	}
	return idx
}

// Get devuelve las existencias del producto; un producto sin lotes tiene 0.
func (s StockIndex) Get(productID string) OnHand {
	return s[ident.Canonical(productID)]
}

// ProductIDs devuelve los productos distintos de los lotes en orden de primera aparición.
func ProductIDs(batches []entity.StockBatch) []string {
	seen := make(map[string]struct{}, len(batches))
	ids := make([]string, 0, len(batches))
	for _, b := range batches {
		key := ident.Canonical(b.ProductID)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ids = append(ids, key)
	}
	return ids
}
