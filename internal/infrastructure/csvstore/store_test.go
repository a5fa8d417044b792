package csvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/stockpilot-api/internal/infrastructure/csvstore"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestStore_ExportacionDePandas(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sales.csv", "_id,sale_date,total_amount\n"+
		"65a1b2c3d4e5f60718293a4b,2024-01-05T10:30:00.000+00:00,12.5\n")
	writeFile(t, dir, "sale_items.csv", "_id,sale_id,batch_id,quantity\n"+
		"i1,65A1B2C3D4E5F60718293A4B,11.0,4\n")
	writeFile(t, dir, "product_batches.csv", "_id,product_id,quantity_in_stock,mrp\n"+
		"11,5,nan,3.20\n12,5,8.0,3.20\n")
	writeFile(t, dir, "products.csv", "\ufeff_id,product_name\n5,Arena para gato\n")

	store, err := csvstore.NewStore(dir, "")
	require.NoError(t, err)
	ctx := context.Background()

	sales, err := store.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)

	items, err := store.ListSaleItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, sales[0].ID, items[0].SaleID, "el hex se normaliza a minúsculas")
	assert.Equal(t, "11", items[0].BatchID)

	batches, err := store.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, int64(0), batches[0].QuantityInStock)
	assert.Equal(t, int64(8), batches[1].QuantityInStock)

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "5", products[0].ID, "la cabecera con BOM se reconoce")
}

func TestStore_Latin1YPuntoYComa(t *testing.T) {
	dir := t.TempDir()
	latin, err := charmap.ISO8859_1.NewEncoder().String("_id;product_name\n1;Jabón de baño\n")
	require.NoError(t, err)
	writeFile(t, dir, "products.csv", latin)

	store, err := csvstore.NewStore(dir, "ISO-8859-1")
	require.NoError(t, err)

	products, err := store.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Jabón de baño", products[0].Name)
}

func TestStore_ArchivoFaltante(t *testing.T) {
	store, err := csvstore.NewStore(t.TempDir(), "utf-8")
	require.NoError(t, err)

	_, err = store.ListBatches(context.Background())
	assert.ErrorContains(t, err, "product_batches.csv")
}

func TestStore_ColumnaObligatoriaFaltante(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sale_items.csv", "_id,sale_id,quantity\ni1,s1,2\n")
	store, err := csvstore.NewStore(dir, "")
	require.NoError(t, err)

	_, err = store.ListSaleItems(context.Background())
	assert.ErrorContains(t, err, "batch_id")
}

func TestNewStore_CharsetInvalido(t *testing.T) {
	_, err := csvstore.NewStore(t.TempDir(), "ebcdic")
	assert.Error(t, err)
}

func TestReadAll_FilasDeLongitudVariable(t *testing.T) {
	rows, err := csvstore.ReadAll(strings.NewReader("a,b,c\n1,2\n3,4,5,6\n"))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
