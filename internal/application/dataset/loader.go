// Package dataset carga de una sola vez las cuatro colecciones que alimentan el
// pipeline de reorden y las entrega como una instantánea inmutable.
package dataset

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
	"github.com/jhoicas/stockpilot-api/pkg/logger"
)

// Snapshot versión única de los datos usada durante todo un cálculo. No se muta.
type Snapshot struct {
	Sales     []entity.Sale
	SaleItems []entity.SaleItem
	Batches   []entity.StockBatch
	Products  []entity.Product
	LoadedAt  time.Time
}

// Loader lee la instantánea desde el repositorio configurado.
type Loader struct {
	repo    repository.SalesDataRepository
	timeout time.Duration
	log     *logger.Logger
	now     func() time.Time
}

// NewLoader construye el cargador. timeout <= 0 desactiva el tope de tiempo propio.
func NewLoader(repo repository.SalesDataRepository, timeout time.Duration, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{repo: repo, timeout: timeout, log: log, now: time.Now}
}

// Load lee ventas, líneas, lotes y productos en paralelo. El primer fallo cancela el
// resto y toda la carga falla con domain.ErrDataUnavailable. Lotes o productos vacíos
// también son ErrDataUnavailable; ventas y líneas pueden venir vacías.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := l.now()
	snap := &Snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Sales, err = l.repo.ListSales(gctx)
		return wrapRead("sales", err)
	})
	g.Go(func() (err error) {
		snap.SaleItems, err = l.repo.ListSaleItems(gctx)
		return wrapRead("sale_items", err)
	})
	g.Go(func() (err error) {
		snap.Batches, err = l.repo.ListBatches(gctx)
		return wrapRead("product_batches", err)
	})
	g.Go(func() (err error) {
		snap.Products, err = l.repo.ListProducts(gctx)
		return wrapRead("products", err)
	})
	if err := g.Wait(); err != nil {
		l.log.Error().Err(err).Msg("carga de datos fallida")
		return nil, err
	}

	if len(snap.Batches) == 0 {
		return nil, fmt.Errorf("%w: la colección product_batches está vacía", domain.ErrDataUnavailable)
	}
	if len(snap.Products) == 0 {
		return nil, fmt.Errorf("%w: la colección products está vacía", domain.ErrDataUnavailable)
	}

	snap.LoadedAt = l.now()
	l.log.Debug().
		Int("sales", len(snap.Sales)).
		Int("sale_items", len(snap.SaleItems)).
		Int("batches", len(snap.Batches)).
		Int("products", len(snap.Products)).
		Dur("elapsed", snap.LoadedAt.Sub(start)).
		Msg("instantánea cargada")
	return snap, nil
}

func wrapRead(collection string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: lectura de %s: %w", domain.ErrDataUnavailable, collection, err)
}
