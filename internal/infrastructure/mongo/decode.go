package mongo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/ident"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/tabular"
)

func decodeSale(d bson.M) (entity.Sale, error) {
	id := ident.Canonical(d["_id"])
	date, err := toTime(d["sale_date"])
	if err != nil {
		return entity.Sale{}, fmt.Errorf("venta %s: sale_date: %w", id, err)
	}
	return entity.Sale{ID: id, SaleDate: date, TotalAmount: toDecimal(d["total_amount"])}, nil
}

func decodeSaleItem(d bson.M) (entity.SaleItem, error) {
	id := ident.Canonical(d["_id"])
	qty := toFloat(d["quantity"])
	if math.IsNaN(qty) || math.IsInf(qty, 0) {
		return entity.SaleItem{}, fmt.Errorf("línea %s: quantity inválida (%v)", id, d["quantity"])
	}
	return entity.SaleItem{
		ID:       id,
		SaleID:   ident.Canonical(d["sale_id"]),
		BatchID:  ident.Canonical(d["batch_id"]),
		Quantity: int64(math.Round(qty)),
	}, nil
}

func decodeBatch(d bson.M) entity.StockBatch {
	b := entity.StockBatch{
		ID:              ident.Canonical(d["_id"]),
		ProductID:       ident.Canonical(d["product_id"]),
		BatchNumber:     toString(d["batch_number"]),
		Barcode:         toString(d["barcode"]),
		QuantityInStock: entity.StockFromFloat(toFloat(d["quantity_in_stock"])),
		MRP:             toDecimal(d["mrp"]),
	}
	if exp, err := toTime(d["expiry_date"]); err == nil {
		b.ExpiryDate = &exp
	}
	return b
}

func decodeProduct(d bson.M) entity.Product {
	name := toString(d["product_name"])
	if name == "" {
		name = toString(d["name"])
	}
	return entity.Product{
		ID:          ident.Canonical(d["_id"]),
		Name:        name,
		Category:    toString(d["category"]),
		HSNCode:     toString(d["hsn_code"]),
		Description: toString(d["description"]),
	}
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC(), nil
	case time.Time:
		return t.UTC(), nil
	case string:
		return tabular.ParseTime(t)
	case nil:
		return time.Time{}, fmt.Errorf("valor ausente")
	default:
		return time.Time{}, fmt.Errorf("tipo de fecha no soportado %T", v)
	}
}

// toFloat devuelve NaN para valores ausentes o no numéricos.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case float64:
		return n
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		return tabular.ParseFloatOrNaN(n)
	default:
		return math.NaN()
	}
}

func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case primitive.Decimal128:
		return tabular.ParseDecimal(n.String())
	case string:
		return tabular.ParseDecimal(n)
	default:
		f := toFloat(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(f)
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}
