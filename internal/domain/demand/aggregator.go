// Package demand atribuye cada unidad vendida a su producto (línea → lote → producto)
// y colapsa las líneas en una serie diaria de demanda.
package demand

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/ident"
)

// Stats diagnóstico de una agregación (se registra en logs; no altera el resultado).
type Stats struct {
	TotalItems    int // líneas de venta recibidas
	JoinedItems   int // líneas con lote resuelto
	DroppedItems  int // líneas cuyo lote no existe (se descartan)
	ProductItems  int // líneas del producto pedido
	DistinctDays  int
	TotalQuantity int64
}

// BatchIndex resuelve lote → producto por clave canónica.
type BatchIndex map[string]string

// IndexBatches construye el índice lote → producto. Lotes sin ID se ignoran.
func IndexBatches(batches []entity.StockBatch) BatchIndex {
	idx := make(BatchIndex, len(batches))
	for _, b := range batches {
		key := ident.Canonical(b.ID)
		if key == "" {
			continue
		}
		idx[key] = ident.Canonical(b.ProductID)
	}
	return idx
}

// Aggregate devuelve la serie diaria de demanda de productID, ordenada por fecha ascendente.
//
//  1. Canonicaliza las claves de lote en ambos lados del join.
//  2. Une líneas → lotes; las líneas sin lote se descartan (no es error).
//  3. Filtra por producto.
//  4. Sin líneas: domain.ErrNoSalesForProduct.
//  5. Une con la venta para obtener la fecha; una venta inexistente es domain.ErrJoinError.
//  6. Agrupa por fecha calendario y suma cantidades.
func Aggregate(
	items []entity.SaleItem,
	batches []entity.StockBatch,
	sales []entity.Sale,
	productID string,
) ([]entity.DailyDemandPoint, Stats, error) {
	stats := Stats{TotalItems: len(items)}
	productKey := ident.Canonical(productID)
	if productKey == "" {
		return nil, stats, fmt.Errorf("%w: product_id vacío", domain.ErrInvalidInput)
	}

	batchIdx := IndexBatches(batches)

	var productItems []entity.SaleItem
	for _, it := range items {
		owner, ok := batchIdx[ident.Canonical(it.BatchID)]
		if !ok {
			stats.DroppedItems++
			continue
		}
		stats.JoinedItems++
		if owner == productKey {
			productItems = append(productItems, it)
		}
	}
	stats.ProductItems = len(productItems)
	if len(productItems) == 0 {
		return nil, stats, fmt.Errorf("%w '%s'", domain.ErrNoSalesForProduct, productKey)
	}

	saleDates := indexSales(sales)
	byDay := make(map[time.Time]int64)
	for _, it := range productItems {
		saleKey := ident.Canonical(it.SaleID)
		date, ok := saleDates[saleKey]
		if !ok {
			return nil, stats, fmt.Errorf("%w: línea %s referencia la venta %q", domain.ErrJoinError, it.ID, saleKey)
		}
		if it.Quantity <= 0 {
			continue
		}
		byDay[date] += it.Quantity
	}

	series := toSeries(byDay, productKey)
	stats.DistinctDays = len(series)
	for _, p := range series {
		stats.TotalQuantity += p.Quantity
	}
	return series, stats, nil
}

// AggregateAll serie diaria de todas las ventas de la tienda, sin filtrar por producto.
// Las líneas cuya venta no existe se descartan: la serie global es orientativa.
func AggregateAll(items []entity.SaleItem, sales []entity.Sale) []entity.DailyDemandPoint {
	saleDates := indexSales(sales)
	byDay := make(map[time.Time]int64)
	for _, it := range items {
		date, ok := saleDates[ident.Canonical(it.SaleID)]
		if !ok || it.Quantity <= 0 {
			continue
		}
		byDay[date] += it.Quantity
	}
	return toSeries(byDay, "")
}

// TopSellers devuelve los n productos con más unidades vendidas (desempate por ID).
// n <= 0 devuelve todos.
func TopSellers(items []entity.SaleItem, batches []entity.StockBatch, products []entity.Product, n int) []entity.TopSeller {
	batchIdx := IndexBatches(batches)
	totals := make(map[string]int64)
	for _, it := range items {
		owner, ok := batchIdx[ident.Canonical(it.BatchID)]
		if !ok || it.Quantity <= 0 {
			continue
		}
		totals[owner] += it.Quantity
	}

	names := ProductNames(products)
	out := make([]entity.TopSeller, 0, len(totals))
	for id, qty := range totals {
		out = append(out, entity.TopSeller{ProductID: id, ProductName: names.Lookup(id), QuantitySold: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QuantitySold != out[j].QuantitySold {
			return out[i].QuantitySold > out[j].QuantitySold
		}
		return out[i].ProductID < out[j].ProductID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Names catálogo ID canónico → nombre.
type Names map[string]string

// ProductNames indexa el catálogo por ID canónico.
func ProductNames(products []entity.Product) Names {
	names := make(Names, len(products))
	for _, p := range products {
		if key := ident.Canonical(p.ID); key != "" {
			names[key] = p.Name
		}
	}
	return names
}

// Lookup devuelve el nombre del producto o entity.UnknownProductName.
func (n Names) Lookup(productID string) string {
	if name, ok := n[ident.Canonical(productID)]; ok && name != "" {
		return name
	}
	return entity.UnknownProductName
}

// Has indica si el producto existe en el catálogo.
func (n Names) Has(productID string) bool {
	_, ok := n[ident.Canonical(productID)]
	return ok
}

func indexSales(sales []entity.Sale) map[string]time.Time {
	dates := make(map[string]time.Time, len(sales))
	for _, s := range sales {
		if key := ident.Canonical(s.ID); key != "" {
			dates[key] = entity.DateOnly(s.SaleDate)
		}
	}
	return dates
}

func toSeries(byDay map[time.Time]int64, productID string) []entity.DailyDemandPoint {
	series := make([]entity.DailyDemandPoint, 0, len(byDay))
	for day, qty := range byDay {
		series = append(series, entity.DailyDemandPoint{Date: day, ProductID: productID, Quantity: qty})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}
