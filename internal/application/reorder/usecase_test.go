package reorder_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockpilot-api/internal/application/dataset"
	"github.com/jhoicas/stockpilot-api/internal/application/dto"
	"github.com/jhoicas/stockpilot-api/internal/application/reorder"
	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/forecast"
)

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type fakeLoader struct {
	snap  *dataset.Snapshot
	err   error
	loads int
}

func (f *fakeLoader) Load(context.Context) (*dataset.Snapshot, error) {
	f.loads++
	return f.snap, f.err
}

// fakeForecaster devuelve una demanda diaria fija por producto o el error configurado.
type fakeForecaster struct {
	daily map[string]int64
	fail  map[string]error
}

func (f *fakeForecaster) Forecast(_ context.Context, productID string, series []entity.DailyDemandPoint, horizon int) ([]entity.ForecastPoint, error) {
	if err, ok := f.fail[productID]; ok {
		return nil, err
	}
	last := series[len(series)-1].Date
	out := make([]entity.ForecastPoint, horizon)
	for i := range out {
		out[i] = entity.ForecastPoint{Date: last.AddDate(0, 0, i+1), PredictedQuantity: f.daily[productID]}
	}
	return out, nil
}

func (f *fakeForecaster) ForecastSeries(ctx context.Context, series []entity.DailyDemandPoint, horizon int) ([]entity.ForecastPoint, error) {
	return f.Forecast(ctx, "__store__", series, horizon)
}

func (f *fakeForecaster) Evaluate(context.Context, []entity.DailyDemandPoint, int) (*forecast.Accuracy, error) {
	return &forecast.Accuracy{TrainDays: 7, HoldoutDays: 7, MAE: 1.234, MAPE: 12.346}, nil
}

type captureReport struct{ got *dto.ReorderReportDTO }

func (c *captureReport) GenerateReorderReport(r *dto.ReorderReportDTO) ([]byte, error) {
	c.got = r
	return []byte("%PDF-1.4"), nil
}

func day(n int) time.Time { return time.Date(2024, 5, 1+n, 12, 0, 0, 0, time.UTC) }

// snapshot: p1 (200 u., 10/día), p2 (20 u., 10/día), p3 (500 u., falla), p4 (sin ventas).
var expiryP1 = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

func snapshot() *dataset.Snapshot {
	snap := &dataset.Snapshot{
		Batches: []entity.StockBatch{
			{ID: "b1", ProductID: "p1", QuantityInStock: 150, MRP: decimal.NewFromInt(2)},
			{ID: "b2", ProductID: "p2", QuantityInStock: 20, MRP: decimal.NewFromInt(5)},
			{ID: "b3", ProductID: "p3", QuantityInStock: 500},
			{ID: "b4", ProductID: "p4", QuantityInStock: 9},
			{ID: "b5", ProductID: "p1", QuantityInStock: 50, MRP: decimal.NewFromInt(2), ExpiryDate: &expiryP1},
		},
		Products: []entity.Product{
			{ID: "p1", Name: "Arroz"},
			{ID: "p2", Name: "Azúcar"},
			{ID: "p3", Name: "Sal"},
		},
	}
	for i := 0; i < 3; i++ {
		saleID := fmt.Sprintf("s%d", i)
		snap.Sales = append(snap.Sales, entity.Sale{ID: saleID, SaleDate: day(i)})
		for _, b := range []string{"b1", "b2", "b3"} {
			snap.SaleItems = append(snap.SaleItems, entity.SaleItem{ID: saleID + b, SaleID: saleID, BatchID: b, Quantity: 3})
		}
	}
	return snap
}

func newUseCase(loader reorder.SnapshotLoader, fc reorder.Forecaster, rep reorder.ReportGenerator) *reorder.UseCase {
	return reorder.NewUseCase(loader, fc, rep, reorder.Config{
		HorizonDays: 30,
		Workers:     3,
		Now:         func() time.Time { return fixedNow },
	}, nil, nil)
}

func defaultForecaster() *fakeForecaster {
	return &fakeForecaster{
		daily: map[string]int64{"p1": 10, "p2": 10, "__store__": 9},
		fail:  map[string]error{"p3": domain.ErrFitTimeout},
	}
}

func TestCalculate_ResultadoDeUnProducto(t *testing.T) {
	uc := newUseCase(&fakeLoader{snap: snapshot()}, defaultForecaster(), nil)

	res, err := uc.Calculate(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Arroz", res.ProductName)
	assert.Equal(t, int64(200), res.CurrentInventory)
	assert.Equal(t, 10.0, res.AvgDailyUsage)
	assert.Equal(t, int64(40), res.SafetyStock)
	assert.Equal(t, int64(110), res.ReorderPoint)
	assert.False(t, res.ReorderNeeded)
	assert.Equal(t, "2024-06-01", res.CalculatedOn)
}

func TestCalculate_SinVentasEsForecastUnavailable(t *testing.T) {
	uc := newUseCase(&fakeLoader{snap: snapshot()}, defaultForecaster(), nil)

	_, err := uc.Calculate(context.Background(), "p4")
	assert.ErrorIs(t, err, domain.ErrForecastUnavailable)
	assert.ErrorIs(t, err, domain.ErrNoSalesForProduct)
}

func TestCalculate_FalloDeAjusteEsForecastUnavailable(t *testing.T) {
	uc := newUseCase(&fakeLoader{snap: snapshot()}, defaultForecaster(), nil)

	_, err := uc.Calculate(context.Background(), "p3")
	assert.ErrorIs(t, err, domain.ErrForecastUnavailable)
	assert.ErrorIs(t, err, domain.ErrFitTimeout)
}

func TestCalculate_DatosNoDisponibles(t *testing.T) {
	loadErr := fmt.Errorf("%w: mongo caído", domain.ErrDataUnavailable)
	uc := newUseCase(&fakeLoader{err: loadErr}, defaultForecaster(), nil)

	_, err := uc.Calculate(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.NotErrorIs(t, err, domain.ErrForecastUnavailable)
}

func TestCalculateAll_OmiteFallosYOrdena(t *testing.T) {
	loader := &fakeLoader{snap: snapshot()}
	uc := newUseCase(loader, defaultForecaster(), nil)

	resp, err := uc.CalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, loader.loads, "una sola instantánea por cálculo masivo")

	require.Len(t, resp.ReorderPoints, 2)
	assert.Equal(t, 2, resp.ReorderSummary.TotalProducts)
	assert.Equal(t, 1, resp.ReorderSummary.ProductsNeedingReorder)
	assert.Equal(t, "p2", resp.ReorderPoints[0].ProductID)
	assert.True(t, resp.ReorderPoints[0].ReorderNeeded)
	assert.Equal(t, "p1", resp.ReorderPoints[1].ProductID)
}

func TestCalculateAll_OrdenPorNecesidadYDias(t *testing.T) {
	snap := snapshot()
	fc := &fakeForecaster{daily: map[string]int64{"p1": 1, "p2": 1, "p3": 1}}
	snap.Batches[0].QuantityInStock = 10 // p1: 60 u. → 49 días
	snap.Batches[1].QuantityInStock = 5  // p2: bajo el ROP
	snap.Batches[2].QuantityInStock = 30 // p3: 30 u. → 19 días
	uc := newUseCase(&fakeLoader{snap: snap}, fc, nil)

	resp, err := uc.CalculateAll(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.ReorderPoints, 3)

	got := []string{resp.ReorderPoints[0].ProductID, resp.ReorderPoints[1].ProductID, resp.ReorderPoints[2].ProductID}
	assert.Equal(t, []string{"p2", "p3", "p1"}, got)
	assert.True(t, resp.ReorderPoints[0].ReorderNeeded)
	assert.Equal(t, 19.0, resp.ReorderPoints[1].DaysUntilReorder)
	assert.Equal(t, 49.0, resp.ReorderPoints[2].DaysUntilReorder)
}

func TestForecast_ProductoDesconocidoEsNotFound(t *testing.T) {
	uc := newUseCase(&fakeLoader{snap: snapshot()}, defaultForecaster(), nil)

	_, err := uc.Forecast(context.Background(), "nope", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Forecast(context.Background(), "p4", 0)
	assert.ErrorIs(t, err, domain.ErrNoSalesForProduct)
}

func TestForecast_TreintaPuntosPorDefecto(t *testing.T) {
	uc := newUseCase(&fakeLoader{snap: snapshot()}, defaultForecaster(), nil)

	resp, err := uc.Forecast(context.Background(), " p1 ", 0)
	require.NoError(t, err)
	assert.Equal(t, "p1", resp.ProductID)
	require.Len(t, resp.Forecast, 30)
	assert.Equal(t, "2024-05-04", resp.Forecast[0].Date)
}

func TestGeneralForecast_SieteDias(t *testing.T) {
	uc := newUseCase(&fakeLoader{snap: snapshot()}, defaultForecaster(), nil)

	resp, err := uc.GeneralForecast(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 7, resp.HorizonDays)
	assert.Len(t, resp.Forecast, 7)
	assert.Equal(t, int64(9), resp.Forecast[0].PredictedQuantity)
}

func TestEvaluate_RedondeaMetricas(t *testing.T) {
	uc := newUseCase(&fakeLoader{snap: snapshot()}, defaultForecaster(), nil)

	resp, err := uc.Evaluate(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1.23, resp.MAE)
	assert.Equal(t, 12.35, resp.MAPE)
}

func TestTopSellers(t *testing.T) {
	uc := newUseCase(&fakeLoader{snap: snapshot()}, defaultForecaster(), nil)

	top, err := uc.TopSellers(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(9), top[0].QuantitySold)
	assert.Equal(t, "p1", top[0].ProductID)
}

func TestReport_UsaUnaInstantanea(t *testing.T) {
	loader := &fakeLoader{snap: snapshot()}
	rep := &captureReport{}
	uc := newUseCase(loader, defaultForecaster(), rep)

	pdf, err := uc.Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), pdf)
	assert.Equal(t, 1, loader.loads)

	require.NotNil(t, rep.got)
	assert.Equal(t, "2024-06-01", rep.got.GeneratedOn)
	assert.Equal(t, 2, rep.got.Skipped)
	require.Len(t, rep.got.Rows, 2)
	assert.True(t, decimal.NewFromInt(400).Equal(rep.got.Rows[1].StockValue))
	assert.Equal(t, "2024-07-15", rep.got.Rows[1].NextExpiry)
	assert.Empty(t, rep.got.Rows[0].NextExpiry)
}

func TestReport_SinGenerador(t *testing.T) {
	uc := newUseCase(&fakeLoader{snap: snapshot()}, defaultForecaster(), nil)
	_, err := uc.Report(context.Background())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrDataUnavailable))
}
