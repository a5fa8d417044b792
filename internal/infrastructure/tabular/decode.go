// Package tabular decodifica tablas de texto (hojas XLSX o archivos CSV) con cabecera
// en las entidades del pipeline. Las cabeceras se reconocen por alias y los IDs salen canonicalizados.
package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/ident"
)

// Nombres de las tablas (hojas del libro o archivos <nombre>.csv).
const (
	TableSales     = "sales"
	TableSaleItems = "sale_items"
	TableBatches   = "product_batches"
	TableProducts  = "products"
)

// Table filas crudas de una tabla; la primera fila es la cabecera.
type Table struct {
	Name string
	Rows [][]string
}

var headerAliases = map[string]string{
	"id":                "id",
	"_id":               "id",
	"sale date":         "sale_date",
	"date":              "sale_date",
	"timestamp":         "sale_date",
	"total amount":      "total_amount",
	"total":             "total_amount",
	"sale id":           "sale_id",
	"batch id":          "batch_id",
	"quantity":          "quantity",
	"qty":               "quantity",
	"quantity sold":     "quantity",
	"product id":        "product_id",
	"batch number":      "batch_number",
	"batch no":          "batch_number",
	"barcode":           "barcode",
	"quantity in stock": "quantity_in_stock",
	"stock":             "quantity_in_stock",
	"mrp":               "mrp",
	"expiry date":       "expiry_date",
	"expiry":            "expiry_date",
	"product name":      "name",
	"name":              "name",
	"category":          "category",
	"hsn code":          "hsn_code",
	"hsn":               "hsn_code",
	"description":       "description",
}

// columns índice de columna por nombre canónico.
type columns map[string]int

func mapColumns(header []string) columns {
	mapped := make(columns)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := headerAliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	if value == "_id" {
		return value
	}
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

func (c columns) require(table string, names ...string) error {
	for _, n := range names {
		if _, ok := c[n]; !ok {
			return fmt.Errorf("tabla %s: falta la columna obligatoria %s", table, n)
		}
	}
	return nil
}

func (c columns) cell(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// dataRows devuelve la cabecera mapeada y las filas con contenido.
func dataRows(t Table) (columns, [][]string) {
	if len(t.Rows) == 0 {
		return columns{}, nil
	}
	out := make([][]string, 0, len(t.Rows)-1)
	for _, r := range t.Rows[1:] {
		if blank(r) {
			continue
		}
		out = append(out, r)
	}
	return mapColumns(t.Rows[0]), out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// DecodeSales requiere las columnas id y sale_date.
func DecodeSales(t Table) ([]entity.Sale, error) {
	cols, rows := dataRows(t)
	if len(rows) == 0 {
		return nil, nil
	}
	if err := cols.require(t.Name, "id", "sale_date"); err != nil {
		return nil, err
	}
	out := make([]entity.Sale, 0, len(rows))
	for i, r := range rows {
		date, err := ParseTime(cols.cell(r, "sale_date"))
		if err != nil {
			return nil, fmt.Errorf("tabla %s fila %d: sale_date: %w", t.Name, i+2, err)
		}
		out = append(out, entity.Sale{
			ID:          ident.Canonical(cols.cell(r, "id")),
			SaleDate:    date,
			TotalAmount: ParseDecimal(cols.cell(r, "total_amount")),
		})
	}
	return out, nil
}

// DecodeSaleItems requiere sale_id, batch_id y quantity.
func DecodeSaleItems(t Table) ([]entity.SaleItem, error) {
	cols, rows := dataRows(t)
	if len(rows) == 0 {
		return nil, nil
	}
	if err := cols.require(t.Name, "sale_id", "batch_id", "quantity"); err != nil {
		return nil, err
	}
	out := make([]entity.SaleItem, 0, len(rows))
	for i, r := range rows {
		qty, err := ParseInt(cols.cell(r, "quantity"))
		if err != nil {
			return nil, fmt.Errorf("tabla %s fila %d: quantity: %w", t.Name, i+2, err)
		}
		id := ident.Canonical(cols.cell(r, "id"))
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		out = append(out, entity.SaleItem{
			ID:       id,
			SaleID:   ident.Canonical(cols.cell(r, "sale_id")),
			BatchID:  ident.Canonical(cols.cell(r, "batch_id")),
			Quantity: qty,
		})
	}
	return out, nil
}

// DecodeBatches requiere id y product_id. Un stock vacío o ilegible cuenta como 0.
func DecodeBatches(t Table) ([]entity.StockBatch, error) {
	cols, rows := dataRows(t)
	if len(rows) == 0 {
		return nil, nil
	}
	if err := cols.require(t.Name, "id", "product_id"); err != nil {
		return nil, err
	}
	out := make([]entity.StockBatch, 0, len(rows))
	for _, r := range rows {
		b := entity.StockBatch{
			ID:              ident.Canonical(cols.cell(r, "id")),
			ProductID:       ident.Canonical(cols.cell(r, "product_id")),
			BatchNumber:     cols.cell(r, "batch_number"),
			Barcode:         cols.cell(r, "barcode"),
			QuantityInStock: entity.StockFromFloat(ParseFloatOrNaN(cols.cell(r, "quantity_in_stock"))),
			MRP:             ParseDecimal(cols.cell(r, "mrp")),
		}
		if raw := cols.cell(r, "expiry_date"); raw != "" {
			if exp, err := ParseTime(raw); err == nil {
				b.ExpiryDate = &exp
			}
		}
		out = append(out, b)
	}
	return out, nil
}

// DecodeProducts requiere id; el nombre puede faltar (se mostrará "Unknown").
func DecodeProducts(t Table) ([]entity.Product, error) {
	cols, rows := dataRows(t)
	if len(rows) == 0 {
		return nil, nil
	}
	if err := cols.require(t.Name, "id"); err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.Product{
			ID:          ident.Canonical(cols.cell(r, "id")),
			Name:        cols.cell(r, "name"),
			Category:    cols.cell(r, "category"),
			HSNCode:     cols.cell(r, "hsn_code"),
			Description: cols.cell(r, "description"),
		})
	}
	return out, nil
}

// ── Conversión tolerante de celdas ─────────────────────────────────────────

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// ParseTime acepta ISO 8601 con o sin zona, fecha sola, dd/mm/yyyy y números de serie de Excel.
// Se conserva la hora de pared del texto: un offset explícito no desplaza la fecha calendario,
// el resultado se reetiqueta como UTC con los mismos año, mes, día y hora.
func ParseTime(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("fecha vacía")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return wallClock(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return wallClock(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("formato de fecha no reconocido: %q", value)
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// ParseInt acepta "3", "3.0" y separadores de miles con coma; rechaza fracciones.
func ParseInt(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("valor vacío")
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("no es un número: %q", value)
	}
	if math.Mod(f, 1) != 0 {
		return 0, fmt.Errorf("debe ser entero: %q", value)
	}
	return int64(f), nil
}

// ParseFloatOrNaN devuelve NaN para celdas vacías o ilegibles (p. ej. "nan" exportado por pandas).
func ParseFloatOrNaN(raw string) float64 {
	value := strings.TrimSpace(raw)
	if value == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ParseDecimal devuelve cero para celdas vacías o ilegibles.
func ParseDecimal(raw string) decimal.Decimal {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}
