package forecast_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/forecast"
)

var origin = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// weeklySeries genera n días con patrón semanal (fines de semana altos).
func weeklySeries(n int) []entity.DailyDemandPoint {
	pattern := []int64{10, 12, 11, 13, 12, 25, 28}
	out := make([]entity.DailyDemandPoint, n)
	for i := 0; i < n; i++ {
		out[i] = entity.DailyDemandPoint{Date: origin.AddDate(0, 0, i), ProductID: "p1", Quantity: pattern[i%7]}
	}
	return out
}

func TestFit_UnaSolaFechaEsHistorialInsuficiente(t *testing.T) {
	series := []entity.DailyDemandPoint{
		{Date: origin, Quantity: 4},
		{Date: origin.Add(3 * time.Hour), Quantity: 2},
	}
	_, err := forecast.Fit(context.Background(), series)
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

func TestForecast_TreintaFechasContiguasTrasLaUltimaObservacion(t *testing.T) {
	series := weeklySeries(42)
	m, err := forecast.Fit(context.Background(), series)
	require.NoError(t, err)
	assert.True(t, m.Seasonal)

	points := m.Forecast(30)
	require.Len(t, points, 30)
	lastObserved := series[len(series)-1].Date
	for i, p := range points {
		assert.Equal(t, lastObserved.AddDate(0, 0, i+1), p.Date)
		assert.GreaterOrEqual(t, p.PredictedQuantity, int64(0))
	}
}

func TestForecast_CapturaPatronSemanal(t *testing.T) {
	m, err := forecast.Fit(context.Background(), weeklySeries(56))
	require.NoError(t, err)

	points := m.Forecast(7)
	// día 56 = lunes del patrón (índice 0); índices 5 y 6 son los picos
	assert.Greater(t, points[5].PredictedQuantity, points[0].PredictedQuantity)
	assert.Greater(t, points[6].PredictedQuantity, points[2].PredictedQuantity)
	assert.InDelta(t, 28, points[6].PredictedQuantity, 4)
}

func TestFit_SerieCortaSinEstacionalidad(t *testing.T) {
	series := []entity.DailyDemandPoint{
		{Date: origin, Quantity: 5},
		{Date: origin.AddDate(0, 0, 3), Quantity: 7},
	}
	m, err := forecast.Fit(context.Background(), series)
	require.NoError(t, err)
	assert.False(t, m.Seasonal)
	assert.Equal(t, 4, m.Observations, "los días sin venta se densifican con 0")

	points := m.Forecast(30)
	require.Len(t, points, 30)
	assert.Equal(t, origin.AddDate(0, 0, 4), points[0].Date)
}

func TestForecast_NuncaNegativo(t *testing.T) {
	series := make([]entity.DailyDemandPoint, 0, 10)
	for i := 0; i < 10; i++ {
		series = append(series, entity.DailyDemandPoint{Date: origin.AddDate(0, 0, i), Quantity: int64(50 - 5*i)})
	}
	m, err := forecast.Fit(context.Background(), series)
	require.NoError(t, err)

	for _, p := range m.Forecast(30) {
		assert.GreaterOrEqual(t, p.PredictedQuantity, int64(0))
	}
}

func TestFit_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := forecast.Fit(ctx, weeklySeries(21))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestModel_SerializacionYValidacion(t *testing.T) {
	m, err := forecast.Fit(context.Background(), weeklySeries(28))
	require.NoError(t, err)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	var back forecast.Model
	require.NoError(t, json.Unmarshal(raw, &back))
	require.NoError(t, back.Validate())
	assert.Equal(t, m.Forecast(30), back.Forecast(30))

	broken := back
	broken.Season = []float64{1, 2}
	assert.ErrorIs(t, broken.Validate(), domain.ErrSerializationFailure)
}

func TestEvaluate_ReservaHoldout(t *testing.T) {
	acc, err := forecast.Evaluate(context.Background(), weeklySeries(35), 7)
	require.NoError(t, err)
	assert.Equal(t, 28, acc.TrainDays)
	assert.Equal(t, 7, acc.HoldoutDays)
	assert.Less(t, acc.MAE, 5.0)
	assert.GreaterOrEqual(t, acc.MAPE, 0.0)
}

func TestEvaluate_HoldoutAutomaticoEnSerieLarga(t *testing.T) {
	acc, err := forecast.Evaluate(context.Background(), weeklySeries(98), 0)
	require.NoError(t, err)
	assert.Equal(t, forecast.LongHoldoutDays, acc.HoldoutDays)
	assert.Equal(t, 84, acc.TrainDays)
}

func TestEvaluate_MideLaCurvaServida(t *testing.T) {
	// demanda decreciente: la predicción cruda cae bajo cero, la servida se recorta a 0
	series := make([]entity.DailyDemandPoint, 0, 14)
	for i := 0; i < 14; i++ {
		q := int64(0)
		if i < 7 {
			q = int64(60 - 10*i)
		}
		series = append(series, entity.DailyDemandPoint{Date: origin.AddDate(0, 0, i), Quantity: q})
	}
	acc, err := forecast.Evaluate(context.Background(), series, 7)
	require.NoError(t, err)

	m, err := forecast.Fit(context.Background(), series[:7])
	require.NoError(t, err)
	var want float64
	for _, p := range m.Forecast(7) {
		want += float64(p.PredictedQuantity)
	}
	assert.InDelta(t, want/7, acc.MAE, 1e-9)
	assert.Equal(t, 0.0, acc.MAPE, "sin demanda real no hay MAPE")
}

func TestEvaluate_SerieCorta(t *testing.T) {
	_, err := forecast.Evaluate(context.Background(), weeklySeries(10), 7)
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

func TestHoldoutFor(t *testing.T) {
	assert.Equal(t, 3, forecast.HoldoutFor(200, 3))
	assert.Equal(t, 14, forecast.HoldoutFor(91, 0))
	assert.Equal(t, 7, forecast.HoldoutFor(60, 0))
}

func TestFingerprint_DependeDeLaSerieExacta(t *testing.T) {
	a := weeklySeries(14)
	b := weeklySeries(14)
	assert.Equal(t, forecast.Fingerprint(a), forecast.Fingerprint(b))

	b[3].Quantity++
	assert.NotEqual(t, forecast.Fingerprint(a), forecast.Fingerprint(b))
}
