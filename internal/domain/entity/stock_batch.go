package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// StockBatch representa inventario físico de un producto. Un producto puede tener varios lotes;
// el inventario disponible del producto es la suma de QuantityInStock de sus lotes.
type StockBatch struct {
	ID              string
	ProductID       string
	BatchNumber     string
	Barcode         string
	QuantityInStock int64 // siempre >= 0
	MRP             decimal.Decimal
	ExpiryDate      *time.Time
}

// StockFromFloat normaliza un conteo de stock leído de un origen sin tipos:
// NaN, infinito o negativo cuentan como 0; el resto se trunca a entero.
func StockFromFloat(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	return int64(f)
}
