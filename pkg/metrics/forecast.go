package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados posibles de un ajuste de modelo.
const (
	ResultOK       = "ok"
	ResultFailure  = "failure"
	ResultTimeout  = "timeout"
	ResultRejected = "insufficient_history"
)

// ForecastMetrics registra duración y resultado de los ajustes de pronóstico.
// Un *ForecastMetrics nil es válido y no registra nada.
type ForecastMetrics struct {
	fitDuration *prometheus.HistogramVec
	fits        *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	skipped     prometheus.Counter
}

// NewForecastMetrics registra las métricas del pronosticador en el registerer dado.
func NewForecastMetrics(reg prometheus.Registerer) *ForecastMetrics {
	if reg == nil {
		return &ForecastMetrics{}
	}
	fitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockpilot_forecast_fit_duration_seconds",
		Help:    "Duración del ajuste de modelo por producto.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"isolation"})
	fits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockpilot_forecast_fits_total",
		Help: "Ajustes de modelo por resultado.",
	}, []string{"result"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockpilot_forecast_cache_hits_total",
		Help: "Modelos reutilizados sin reajuste, por capa (memory|artifact).",
	}, []string{"layer"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stockpilot_reorder_products_skipped_total",
		Help: "Productos omitidos en el cálculo masivo de puntos de reorden.",
	})
	reg.MustRegister(fitDuration, fits, cacheHits, skipped)
	return &ForecastMetrics{
		fitDuration: fitDuration,
		fits:        fits,
		cacheHits:   cacheHits,
		skipped:     skipped,
	}
}

// ObserveFit registra la duración y el resultado de un ajuste.
func (m *ForecastMetrics) ObserveFit(isolation, result string, d time.Duration) {
	if m == nil || m.fitDuration == nil {
		return
	}
	m.fitDuration.WithLabelValues(normalizeLabel(isolation)).Observe(d.Seconds())
	m.fits.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncCacheHit cuenta un modelo servido desde la capa indicada.
func (m *ForecastMetrics) IncCacheHit(layer string) {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues(normalizeLabel(layer)).Inc()
}

// IncSkipped cuenta un producto descartado en CalculateAll.
func (m *ForecastMetrics) IncSkipped() {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
