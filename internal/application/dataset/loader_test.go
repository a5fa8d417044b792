package dataset_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockpilot-api/internal/application/dataset"
	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

type fakeRepo struct {
	sales    []entity.Sale
	items    []entity.SaleItem
	batches  []entity.StockBatch
	products []entity.Product
	itemsErr error
}

func (f *fakeRepo) ListSales(context.Context) ([]entity.Sale, error) { return f.sales, nil }
func (f *fakeRepo) ListSaleItems(context.Context) ([]entity.SaleItem, error) {
	return f.items, f.itemsErr
}
func (f *fakeRepo) ListBatches(context.Context) ([]entity.StockBatch, error) { return f.batches, nil }
func (f *fakeRepo) ListProducts(context.Context) ([]entity.Product, error)   { return f.products, nil }

func TestLoad_InstantaneaCompleta(t *testing.T) {
	repo := &fakeRepo{
		sales:    []entity.Sale{{ID: "s1"}},
		items:    []entity.SaleItem{{ID: "i1", SaleID: "s1", BatchID: "b1", Quantity: 1}},
		batches:  []entity.StockBatch{{ID: "b1", ProductID: "p1"}},
		products: []entity.Product{{ID: "p1", Name: "Jabón"}},
	}

	snap, err := dataset.NewLoader(repo, 0, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Sales, 1)
	assert.Len(t, snap.SaleItems, 1)
	assert.Len(t, snap.Batches, 1)
	assert.Len(t, snap.Products, 1)
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestLoad_ErrorDeLecturaEsDataUnavailable(t *testing.T) {
	cause := errors.New("conexión rechazada")
	repo := &fakeRepo{
		batches:  []entity.StockBatch{{ID: "b1", ProductID: "p1"}},
		products: []entity.Product{{ID: "p1"}},
		itemsErr: cause,
	}

	_, err := dataset.NewLoader(repo, 0, nil).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestLoad_ColeccionesObligatoriasVacias(t *testing.T) {
	_, err := dataset.NewLoader(&fakeRepo{products: []entity.Product{{ID: "p1"}}}, 0, nil).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	_, err = dataset.NewLoader(&fakeRepo{batches: []entity.StockBatch{{ID: "b1"}}}, 0, nil).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestLoad_VentasVaciasPermitidas(t *testing.T) {
	repo := &fakeRepo{
		batches:  []entity.StockBatch{{ID: "b1", ProductID: "p1"}},
		products: []entity.Product{{ID: "p1"}},
	}
	snap, err := dataset.NewLoader(repo, 0, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Sales)
}
