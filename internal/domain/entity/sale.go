package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale cabecera de una venta. Puede contener varias líneas (SaleItem).
type Sale struct {
	ID          string
	SaleDate    time.Time
	TotalAmount decimal.Decimal
}

// SaleItem línea de venta: vincula una venta con el lote concreto vendido (y por tanto el producto).
type SaleItem struct {
	ID       string
	SaleID   string
	BatchID  string
	Quantity int64
}
