// Package forecast implementa el modelo de pronóstico de demanda diaria:
// Holt-Winters aditivo con tendencia amortiguada y estacionalidad semanal.
package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

const (
	// WeeklyPeriod longitud del ciclo estacional (días).
	WeeklyPeriod = 7
	// MinSeasonalDays mínimo de días densificados para estimar la componente semanal.
	MinSeasonalDays = 2 * WeeklyPeriod
	// MinDistinctDates mínimo de fechas con ventas para ajustar cualquier modelo.
	MinDistinctDates = 2
)

// Rejillas de búsqueda de parámetros de suavizado.
var (
	alphaGrid = []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.7, 0.9}
	betaGrid  = []float64{0.01, 0.05, 0.1, 0.2, 0.3}
	gammaGrid = []float64{0.05, 0.1, 0.2, 0.3, 0.5}
	phiGrid   = []float64{0.8, 0.9, 0.98, 1.0}
)

// Model estado ajustado del modelo. Es serializable a JSON para poder
// persistirlo como artefacto o devolverlo desde el proceso aislado.
type Model struct {
	Alpha    float64   `json:"alpha"`
	Beta     float64   `json:"beta"`
	Gamma    float64   `json:"gamma"`
	Phi      float64   `json:"phi"`
	Level    float64   `json:"level"`
	Trend    float64   `json:"trend"`
	Season   []float64 `json:"season,omitempty"`
	Seasonal bool      `json:"seasonal"`
	// Observations días densificados usados en el ajuste; fija la fase estacional.
	Observations int       `json:"observations"`
	LastDate     time.Time `json:"last_date"`
	SSE          float64   `json:"sse"`
}

// Densify convierte la serie en valores diarios contiguos desde la primera hasta la
// última fecha; un día sin ventas vale 0. Devuelve también la primera fecha.
// Fechas repetidas se suman.
func Densify(series []entity.DailyDemandPoint) ([]float64, time.Time, time.Time) {
	if len(series) == 0 {
		return nil, time.Time{}, time.Time{}
	}
	byDay := make(map[time.Time]float64, len(series))
	first := entity.DateOnly(series[0].Date)
	last := first
	for _, p := range series {
		d := entity.DateOnly(p.Date)
		byDay[d] += float64(p.Quantity)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	n := int(last.Sub(first).Hours()/24) + 1
	values := make([]float64, n)
	for d, q := range byDay {
		values[int(d.Sub(first).Hours()/24)] = q
	}
	return values, first, last
}

// DistinctDates cuenta las fechas calendario distintas de la serie.
func DistinctDates(series []entity.DailyDemandPoint) int {
	seen := make(map[time.Time]struct{}, len(series))
	for _, p := range series {
		seen[entity.DateOnly(p.Date)] = struct{}{}
	}
	return len(seen)
}

// Fit ajusta el modelo a la serie diaria. Con menos de 2 fechas distintas devuelve
// domain.ErrInsufficientHistory; si ninguna combinación de parámetros produce un
// ajuste finito, domain.ErrFitFailure. La búsqueda respeta la cancelación de ctx.
func Fit(ctx context.Context, series []entity.DailyDemandPoint) (*Model, error) {
	if got := DistinctDates(series); got < MinDistinctDates {
		return nil, fmt.Errorf("%w (fechas: %d)", domain.ErrInsufficientHistory, got)
	}
	values, _, last := Densify(series)
	return fitValues(ctx, values, last)
}

func fitValues(ctx context.Context, y []float64, last time.Time) (*Model, error) {
	seasonal := len(y) >= MinSeasonalDays
	gammas := gammaGrid
	if !seasonal {
		gammas = []float64{0}
	}

	var best *Model
	for _, alpha := range alphaGrid {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, beta := range betaGrid {
			for _, gamma := range gammas {
				for _, phi := range phiGrid {
					m := run(y, alpha, beta, gamma, phi, seasonal)
					if !m.finite() {
						continue
					}
					if best == nil || m.SSE < best.SSE {
						best = m
					}
				}
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: ninguna combinación de parámetros converge", domain.ErrFitFailure)
	}
	best.LastDate = entity.DateOnly(last)
	return best, nil
}

// run recorre la serie con parámetros fijos y acumula el error cuadrático de un paso.
func run(y []float64, alpha, beta, gamma, phi float64, seasonal bool) *Model {
	m := &Model{Alpha: alpha, Beta: beta, Gamma: gamma, Phi: phi, Seasonal: seasonal, Observations: len(y)}

	start := 1
	if seasonal {
		p := WeeklyPeriod
		first := mean(y[:p])
		second := mean(y[p : 2*p])
		m.Level = first
		m.Trend = (second - first) / float64(p)
		m.Season = make([]float64, p)
		for i := 0; i < p; i++ {
			m.Season[i] = y[i] - first
		}
		start = p
	} else {
		m.Level = y[0]
		m.Trend = y[1] - y[0]
	}

	for t := start; t < len(y); t++ {
		var s float64
		if seasonal {
			s = m.Season[t%WeeklyPeriod]
		}
		pred := m.Level + phi*m.Trend + s
		e := y[t] - pred
		m.SSE += e * e

		level := alpha*(y[t]-s) + (1-alpha)*(m.Level+phi*m.Trend)
		m.Trend = beta*(level-m.Level) + (1-beta)*phi*m.Trend
		m.Level = level
		if seasonal {
			m.Season[t%WeeklyPeriod] = gamma*(y[t]-level) + (1-gamma)*s
		}
	}
	return m
}

func (m *Model) finite() bool {
	if !isFinite(m.SSE) || !isFinite(m.Level) || !isFinite(m.Trend) {
		return false
	}
	for _, s := range m.Season {
		if !isFinite(s) {
			return false
		}
	}
	return true
}

// Validate comprueba que un modelo recibido de fuera (artefacto o proceso aislado) es utilizable.
func (m *Model) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: modelo nulo", domain.ErrSerializationFailure)
	}
	if !m.finite() || m.LastDate.IsZero() {
		return fmt.Errorf("%w: estado del modelo inválido", domain.ErrSerializationFailure)
	}
	if m.Seasonal && len(m.Season) != WeeklyPeriod {
		return fmt.Errorf("%w: componente estacional de longitud %d", domain.ErrSerializationFailure, len(m.Season))
	}
	return nil
}

// Predict devuelve las estimaciones crudas (sin redondear ni recortar) de los próximos h días.
func (m *Model) Predict(h int) []float64 {
	out := make([]float64, 0, max(h, 0))
	damp := 0.0
	phiPow := 1.0
	for i := 1; i <= h; i++ {
		phiPow *= m.Phi
		damp += phiPow
		v := m.Level + damp*m.Trend
		if m.Seasonal && len(m.Season) == WeeklyPeriod {
			v += m.Season[(m.Observations-1+i)%WeeklyPeriod]
		}
		out = append(out, v)
	}
	return out
}

// Forecast devuelve horizon puntos diarios contiguos que empiezan el día siguiente
// a la última observación. Los valores se recortan a 0 y se redondean al entero más cercano.
func (m *Model) Forecast(horizon int) []entity.ForecastPoint {
	raw := m.Predict(horizon)
	points := make([]entity.ForecastPoint, len(raw))
	for i, v := range raw {
		points[i] = entity.ForecastPoint{
			Date:              m.LastDate.AddDate(0, 0, i+1),
			PredictedQuantity: clipRound(v),
		}
	}
	return points
}

func clipRound(v float64) int64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return int64(math.Round(v))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
