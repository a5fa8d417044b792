// Package reorder convierte el pronóstico de demanda en decisiones de reposición por producto.
package reorder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stockpilot-api/internal/application/dataset"
	"github.com/jhoicas/stockpilot-api/internal/application/dto"
	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/demand"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/ident"
	"github.com/jhoicas/stockpilot-api/internal/domain/inventory"
	"github.com/jhoicas/stockpilot-api/pkg/logger"
	"github.com/jhoicas/stockpilot-api/pkg/metrics"
)

// Config parámetros del motor de reorden.
type Config struct {
	Policy             inventory.Policy
	HorizonDays        int // días pronosticados por producto (30)
	GeneralHorizonDays int // días del pronóstico de toda la tienda (7)
	HoldoutDays        int // días reservados al evaluar; 0 = según tamaño de la serie
	Workers            int // productos calculados en paralelo en CalculateAll
	Now                func() time.Time
}

// UseCase motor de reorden. Cada operación carga su propia instantánea de datos.
type UseCase struct {
	loader     SnapshotLoader
	forecaster Forecaster
	reports    ReportGenerator
	cfg        Config
	metrics    *metrics.ForecastMetrics
	log        *logger.Logger
}

// NewUseCase construye el motor de reorden. reports, m y log pueden ser nil.
func NewUseCase(
	loader SnapshotLoader,
	forecaster Forecaster,
	reports ReportGenerator,
	cfg Config,
	m *metrics.ForecastMetrics,
	log *logger.Logger,
) *UseCase {
	if cfg.Policy == (inventory.Policy{}) {
		cfg.Policy = inventory.DefaultPolicy()
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 30
	}
	if cfg.GeneralHorizonDays <= 0 {
		cfg.GeneralHorizonDays = 7
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		loader:     loader,
		forecaster: forecaster,
		reports:    reports,
		cfg:        cfg,
		metrics:    m,
		log:        log,
	}
}

// lookups índices derivados de la instantánea, construidos una vez por operación.
type lookups struct {
	snap  *dataset.Snapshot
	names demand.Names
	stock inventory.StockIndex
}

func newLookups(snap *dataset.Snapshot) *lookups {
	return &lookups{
		snap:  snap,
		names: demand.ProductNames(snap.Products),
		stock: inventory.IndexStock(snap.Batches),
	}
}

// Calculate decide la reposición de un producto. Si no hay pronóstico posible (sin ventas,
// historial corto, fallo de ajuste) el error es domain.ErrForecastUnavailable envolviendo la causa.
func (uc *UseCase) Calculate(ctx context.Context, productID string) (*dto.ReorderResultDTO, error) {
	snap, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	res, err := uc.calculateOn(ctx, newLookups(snap), productID)
	if err != nil {
		return nil, err
	}
	out := dto.NewReorderResultDTO(res)
	return &out, nil
}

// CalculateAll calcula todos los productos presentes en los lotes sobre una misma instantánea.
// Los productos que fallan se registran y se omiten; el resultado queda ordenado con los que
// necesitan reorden primero y, dentro de cada grupo, por días hasta el reorden ascendente.
func (uc *UseCase) CalculateAll(ctx context.Context) (*dto.ReorderListResponse, error) {
	snap, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	results, _, err := uc.calculateAll(ctx, newLookups(snap))
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReorderResultDTO, len(results))
	for i, r := range results {
		out[i] = dto.NewReorderResultDTO(r)
	}
	resp := dto.NewReorderListResponse(out)
	return &resp, nil
}

// Forecast pronostica la demanda de un producto. Un producto que no aparece en el catálogo
// ni en los lotes es domain.ErrNotFound; el resto de errores conserva su tipo original.
func (uc *UseCase) Forecast(ctx context.Context, productID string, horizon int) (*dto.ProductForecastResponse, error) {
	if horizon <= 0 {
		horizon = uc.cfg.HorizonDays
	}
	snap, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	lk := newLookups(snap)
	key := ident.Canonical(productID)
	if !uc.knownProduct(lk, key) {
		return nil, fmt.Errorf("%w: producto '%s'", domain.ErrNotFound, key)
	}

	series, err := uc.series(lk, key)
	if err != nil {
		return nil, err
	}
	points, err := uc.forecaster.Forecast(ctx, key, series, horizon)
	if err != nil {
		return nil, err
	}
	return &dto.ProductForecastResponse{ProductID: key, Forecast: dto.NewForecastPoints(points)}, nil
}

// GeneralForecast pronostica la demanda agregada de toda la tienda.
func (uc *UseCase) GeneralForecast(ctx context.Context, horizon int) (*dto.GeneralForecastResponse, error) {
	if horizon <= 0 {
		horizon = uc.cfg.GeneralHorizonDays
	}
	snap, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	series := demand.AggregateAll(snap.SaleItems, snap.Sales)
	points, err := uc.forecaster.ForecastSeries(ctx, series, horizon)
	if err != nil {
		return nil, err
	}
	return &dto.GeneralForecastResponse{HorizonDays: horizon, Forecast: dto.NewForecastPoints(points)}, nil
}

// Evaluate mide la precisión del modelo del producto sobre sus últimos días de ventas.
func (uc *UseCase) Evaluate(ctx context.Context, productID string) (*dto.ForecastAccuracyResponse, error) {
	snap, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	lk := newLookups(snap)
	key := ident.Canonical(productID)
	if !uc.knownProduct(lk, key) {
		return nil, fmt.Errorf("%w: producto '%s'", domain.ErrNotFound, key)
	}
	series, err := uc.series(lk, key)
	if err != nil {
		return nil, err
	}
	acc, err := uc.forecaster.Evaluate(ctx, series, uc.cfg.HoldoutDays)
	if err != nil {
		return nil, err
	}
	return &dto.ForecastAccuracyResponse{
		ProductID:   key,
		TrainDays:   acc.TrainDays,
		HoldoutDays: acc.HoldoutDays,
		MAE:         round2(acc.MAE),
		MAPE:        round2(acc.MAPE),
	}, nil
}

// TopSellers devuelve los n productos más vendidos.
func (uc *UseCase) TopSellers(ctx context.Context, n int) ([]dto.TopSellerDTO, error) {
	snap, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	top := demand.TopSellers(snap.SaleItems, snap.Batches, snap.Products, n)
	out := make([]dto.TopSellerDTO, len(top))
	for i, t := range top {
		out[i] = dto.TopSellerDTO{ProductID: t.ProductID, ProductName: t.ProductName, QuantitySold: t.QuantitySold}
	}
	return out, nil
}

// Report genera el informe PDF de reposición sobre una única instantánea.
func (uc *UseCase) Report(ctx context.Context) ([]byte, error) {
	if uc.reports == nil {
		return nil, errors.New("generador de informes no configurado")
	}
	snap, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	lk := newLookups(snap)
	results, skipped, err := uc.calculateAll(ctx, lk)
	if err != nil {
		return nil, err
	}

	rows := make([]dto.ReorderReportRowDTO, len(results))
	flat := make([]dto.ReorderResultDTO, len(results))
	for i, r := range results {
		flat[i] = dto.NewReorderResultDTO(r)
		onHand := lk.stock.Get(r.ProductID)
		rows[i] = dto.ReorderReportRowDTO{
			ReorderResultDTO: flat[i],
			StockValue:       onHand.Value,
		}
		if onHand.NextExpiry != nil {
			rows[i].NextExpiry = onHand.NextExpiry.Format(dto.DateLayout)
		}
	}
	report := &dto.ReorderReportDTO{
		Title:       "Informe de reposición",
		GeneratedOn: entity.DateOnly(uc.cfg.Now()).Format(dto.DateLayout),
		Summary:     dto.NewReorderListResponse(flat).ReorderSummary,
		Rows:        rows,
		Skipped:     skipped,
	}
	return uc.reports.GenerateReorderReport(report)
}

// ── Internos ────────────────────────────────────────────────────────────────

func (uc *UseCase) calculateAll(ctx context.Context, lk *lookups) ([]entity.ReorderResult, int, error) {
	ids := inventory.ProductIDs(lk.snap.Batches)
	slots := make([]*entity.ReorderResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.Workers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			res, err := uc.calculateOn(gctx, lk, id)
			if err != nil {
				uc.metrics.IncSkipped()
				uc.log.Warn().Err(err).Str("product_id", id).Msg("producto omitido en el cálculo de reorden")
				return nil
			}
			slots[i] = &res
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	results := make([]entity.ReorderResult, 0, len(ids))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.ReorderNeeded != b.ReorderNeeded {
			return a.ReorderNeeded
		}
		return a.DaysUntilReorder < b.DaysUntilReorder
	})
	skipped := len(ids) - len(results)
	uc.log.Info().Int("products", len(ids)).Int("calculated", len(results)).Int("skipped", skipped).Msg("cálculo de reorden completado")
	return results, skipped, nil
}

func (uc *UseCase) calculateOn(ctx context.Context, lk *lookups, productID string) (entity.ReorderResult, error) {
	key := ident.Canonical(productID)
	series, err := uc.series(lk, key)
	if err != nil {
		return entity.ReorderResult{}, fmt.Errorf("%w: %w", domain.ErrForecastUnavailable, err)
	}
	points, err := uc.forecaster.Forecast(ctx, key, series, uc.cfg.HorizonDays)
	if err != nil {
		return entity.ReorderResult{}, fmt.Errorf("%w: %w", domain.ErrForecastUnavailable, err)
	}
	return inventory.CalculateReorder(inventory.ReorderInput{
		ProductID:        key,
		ProductName:      lk.names.Lookup(key),
		CurrentInventory: lk.stock.Get(key).Quantity,
		Forecast:         points,
		Today:            uc.cfg.Now(),
	}, uc.cfg.Policy), nil
}

func (uc *UseCase) series(lk *lookups, productID string) ([]entity.DailyDemandPoint, error) {
	series, stats, err := demand.Aggregate(lk.snap.SaleItems, lk.snap.Batches, lk.snap.Sales, productID)
	if stats.DroppedItems > 0 {
		uc.log.Debug().Str("product_id", productID).Int("dropped_items", stats.DroppedItems).Msg("líneas de venta sin lote resoluble descartadas")
	}
	return series, err
}

func (uc *UseCase) knownProduct(lk *lookups, productID string) bool {
	if productID == "" {
		return false
	}
	if lk.names.Has(productID) {
		return true
	}
	return lk.stock.Get(productID).Batches > 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
