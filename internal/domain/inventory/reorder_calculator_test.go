package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/inventory"
)

var today = time.Date(2024, 5, 20, 15, 30, 0, 0, time.UTC)

func flatForecast(qty int64, n int) []entity.ForecastPoint {
	out := make([]entity.ForecastPoint, n)
	for i := range out {
		out[i] = entity.ForecastPoint{Date: today.AddDate(0, 0, i+1), PredictedQuantity: qty}
	}
	return out
}

func TestCalculateReorder_FormulaDeterminista(t *testing.T) {
	res := inventory.CalculateReorder(inventory.ReorderInput{
		ProductID:        "p1",
		ProductName:      "Ibuprofeno",
		CurrentInventory: 200,
		Forecast:         flatForecast(10, 30),
		Today:            today,
	}, inventory.DefaultPolicy())

	assert.Equal(t, 10.0, res.AvgDailyUsage)
	assert.Equal(t, int64(40), res.SafetyStock)
	assert.Equal(t, int64(110), res.ReorderPoint)
	assert.False(t, res.ReorderNeeded)
	// (200 − 109.686…) / 10 = 9.03 → 9.0
	assert.Equal(t, 9.0, res.DaysUntilReorder)
	assert.Equal(t, 7, res.LeadTimeDays)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), res.CalculatedOn)
}

func TestCalculateReorder_NecesitaReordenSinRedondear(t *testing.T) {
	// ROP sin redondear = 109.686…; 110 unidades superan el umbral aunque el ROP publicado sea 110.
	res := inventory.CalculateReorder(inventory.ReorderInput{
		ProductID:        "p1",
		CurrentInventory: 110,
		Forecast:         flatForecast(10, 30),
		Today:            today,
	}, inventory.DefaultPolicy())

	assert.Equal(t, int64(110), res.ReorderPoint)
	assert.False(t, res.ReorderNeeded)

	res = inventory.CalculateReorder(inventory.ReorderInput{
		ProductID:        "p1",
		CurrentInventory: 100,
		Forecast:         flatForecast(10, 30),
		Today:            today,
	}, inventory.DefaultPolicy())
	assert.True(t, res.ReorderNeeded)
	assert.Equal(t, 0.0, res.DaysUntilReorder)
}

func TestCalculateReorder_UsoCeroDaCeroDias(t *testing.T) {
	res := inventory.CalculateReorder(inventory.ReorderInput{
		ProductID:        "p1",
		CurrentInventory: 500,
		Forecast:         flatForecast(0, 30),
		Today:            today,
	}, inventory.DefaultPolicy())

	assert.Equal(t, 0.0, res.DaysUntilReorder)
	assert.Equal(t, int64(0), res.ReorderPoint)
	assert.Equal(t, int64(0), res.SafetyStock)
	assert.False(t, res.ReorderNeeded)
	assert.Equal(t, entity.UnknownProductName, res.ProductName)
}

func TestAvgDailyUsage_RedondeoDosDecimales(t *testing.T) {
	points := []entity.ForecastPoint{{PredictedQuantity: 1}, {PredictedQuantity: 1}, {PredictedQuantity: 2}}
	res := inventory.CalculateReorder(inventory.ReorderInput{Forecast: points, Today: today}, inventory.DefaultPolicy())
	assert.Equal(t, 1.33, res.AvgDailyUsage)
	assert.Equal(t, 0.0, inventory.AvgDailyUsage(nil))
}

func TestIndexStock_SumaLotesYPrimeraAparicion(t *testing.T) {
	batches := []entity.StockBatch{
		{ID: "b1", ProductID: "p2", QuantityInStock: 5, MRP: decimal.NewFromInt(10)},
		{ID: "b2", ProductID: "p1", QuantityInStock: 3, MRP: decimal.NewFromInt(4)},
		{ID: "b3", ProductID: " p2", QuantityInStock: 15, MRP: decimal.NewFromInt(20)},
		{ID: "b4", ProductID: "p3", QuantityInStock: -8},
	}

	idx := inventory.IndexStock(batches)
	p2 := idx.Get("p2")
	assert.Equal(t, int64(20), p2.Quantity)
	assert.Equal(t, 2, p2.Batches)
	assert.True(t, decimal.NewFromFloat(17.5).Equal(p2.AvgMRP()))
	assert.Equal(t, int64(0), idx.Get("p3").Quantity)
	assert.Equal(t, int64(0), idx.Get("desconocido").Quantity)

	require.Equal(t, []string{"p2", "p1", "p3"}, inventory.ProductIDs(batches))
}

func TestIndexStock_VencimientoMasProximoConExistencias(t *testing.T) {
	soon := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	empty := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	batches := []entity.StockBatch{
		{ID: "b1", ProductID: "p1", QuantityInStock: 4, ExpiryDate: &later},
		{ID: "b2", ProductID: "p1", QuantityInStock: 0, ExpiryDate: &empty},
		{ID: "b3", ProductID: "p1", QuantityInStock: 2, ExpiryDate: &soon},
		{ID: "b4", ProductID: "p2", QuantityInStock: 9},
	}

	idx := inventory.IndexStock(batches)
	require.NotNil(t, idx.Get("p1").NextExpiry)
	assert.Equal(t, soon, *idx.Get("p1").NextExpiry, "un lote agotado no cuenta")
	assert.Nil(t, idx.Get("p2").NextExpiry)
}
