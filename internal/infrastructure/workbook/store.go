// Package workbook implementa el repositorio de datos de ventas sobre un libro XLSX
// con una hoja por colección (sales, sale_items, product_batches, products).
package workbook

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/tabular"
)

// Store lee el libro en cada llamada, de modo que una exportación nueva se ve sin reiniciar.
type Store struct {
	path string
}

var _ repository.SalesDataRepository = (*Store)(nil)

// NewStore crea el repositorio sobre el archivo XLSX indicado.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) ListSales(ctx context.Context) ([]entity.Sale, error) {
	t, err := s.readSheet(ctx, tabular.TableSales)
	if err != nil {
		return nil, err
	}
	return tabular.DecodeSales(t)
}

func (s *Store) ListSaleItems(ctx context.Context) ([]entity.SaleItem, error) {
	t, err := s.readSheet(ctx, tabular.TableSaleItems)
	if err != nil {
		return nil, err
	}
	return tabular.DecodeSaleItems(t)
}

func (s *Store) ListBatches(ctx context.Context) ([]entity.StockBatch, error) {
	t, err := s.readSheet(ctx, tabular.TableBatches)
	if err != nil {
		return nil, err
	}
	return tabular.DecodeBatches(t)
}

func (s *Store) ListProducts(ctx context.Context) ([]entity.Product, error) {
	t, err := s.readSheet(ctx, tabular.TableProducts)
	if err != nil {
		return nil, err
	}
	return tabular.DecodeProducts(t)
}

func (s *Store) readSheet(ctx context.Context, name string) (tabular.Table, error) {
	if err := ctx.Err(); err != nil {
		return tabular.Table{}, err
	}
	file, err := excelize.OpenFile(s.path)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("abrir libro %s: %w", s.path, err)
	}
	defer file.Close()

	sheet := ""
	for _, candidate := range file.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(candidate), name) {
			sheet = candidate
			break
		}
	}
	if sheet == "" {
		return tabular.Table{}, fmt.Errorf("libro %s: no existe la hoja %s", s.path, name)
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("leer hoja %s: %w", sheet, err)
	}
	return tabular.Table{Name: name, Rows: rows}, nil
}
