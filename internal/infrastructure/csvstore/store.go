// Package csvstore implementa el repositorio de datos de ventas sobre un directorio con
// sales.csv, sale_items.csv, product_batches.csv y products.csv (exportaciones del almacén original).
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/tabular"
)

// Store lee los CSV en cada llamada.
type Store struct {
	dir     string
	charset string
}

var _ repository.SalesDataRepository = (*Store)(nil)

// NewStore crea el repositorio. charset: utf-8 (default), iso-8859-1 o windows-1252.
func NewStore(dir, charset string) (*Store, error) {
	cs := strings.ToLower(strings.TrimSpace(charset))
	switch cs {
	case "", "utf-8", "utf8", "iso-8859-1", "iso8859-1", "latin1", "windows-1252", "cp1252":
	default:
		return nil, fmt.Errorf("csvstore: charset no soportado %q", charset)
	}
	return &Store{dir: dir, charset: cs}, nil
}

func (s *Store) ListSales(ctx context.Context) ([]entity.Sale, error) {
	t, err := s.readTable(ctx, tabular.TableSales)
	if err != nil {
		return nil, err
	}
	return tabular.DecodeSales(t)
}

func (s *Store) ListSaleItems(ctx context.Context) ([]entity.SaleItem, error) {
	t, err := s.readTable(ctx, tabular.TableSaleItems)
	if err != nil {
		return nil, err
	}
	return tabular.DecodeSaleItems(t)
}

func (s *Store) ListBatches(ctx context.Context) ([]entity.StockBatch, error) {
	t, err := s.readTable(ctx, tabular.TableBatches)
	if err != nil {
		return nil, err
	}
	return tabular.DecodeBatches(t)
}

func (s *Store) ListProducts(ctx context.Context) ([]entity.Product, error) {
	t, err := s.readTable(ctx, tabular.TableProducts)
	if err != nil {
		return nil, err
	}
	return tabular.DecodeProducts(t)
}

func (s *Store) readTable(ctx context.Context, name string) (tabular.Table, error) {
	if err := ctx.Err(); err != nil {
		return tabular.Table{}, err
	}
	path := filepath.Join(s.dir, name+".csv")
	f, err := os.Open(path)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadAll(s.decoder(f))
	if err != nil {
		return tabular.Table{}, fmt.Errorf("leer %s: %w", path, err)
	}
	return tabular.Table{Name: name, Rows: rows}, nil
}

func (s *Store) decoder(r io.Reader) io.Reader {
	switch s.charset {
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return r
	}
}

// ReadAll lee un CSV tolerante: filas de longitud variable, comillas sueltas y separador
// ';' cuando la cabecera no contiene comas (exportaciones de Excel en configuración regional es-CO).
func ReadAll(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	header, _, _ := strings.Cut(text, "\n")
	if !strings.Contains(header, ",") && strings.Contains(header, ";") {
		reader.Comma = ';'
	}
	return reader.ReadAll()
}
