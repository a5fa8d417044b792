package forecast

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

// Holdout por defecto según el tamaño de la serie.
const (
	DefaultHoldoutDays = 7
	LongHoldoutDays    = 14
	longSeriesDays     = 90
)

// Accuracy resultado de evaluar el modelo contra los últimos días observados.
type Accuracy struct {
	TrainDays   int
	HoldoutDays int
	MAE         float64 // unidades
	MAPE        float64 // porcentaje, calculado sobre los días con demanda real > 0
}

// HoldoutFor elige cuántos días reservar: requested si es positivo; si no, 14 para
// series de más de 90 días y 7 en el resto.
func HoldoutFor(days, requested int) int {
	if requested > 0 {
		return requested
	}
	if days > longSeriesDays {
		return LongHoldoutDays
	}
	return DefaultHoldoutDays
}

// Evaluate ajusta el modelo con todos los días salvo los últimos holdoutDays y mide
// el error del pronóstico sobre esos días. Requiere al menos 2×holdoutDays días densificados.
// Se compara la misma curva que devuelve Forecast (recortada a 0 y redondeada).
func Evaluate(ctx context.Context, series []entity.DailyDemandPoint, holdoutDays int) (*Accuracy, error) {
	values, _, last := Densify(series)
	holdoutDays = HoldoutFor(len(values), holdoutDays)
	if len(values) < 2*holdoutDays {
		return nil, fmt.Errorf("%w (días: %d, se requieren %d)", domain.ErrInsufficientHistory, len(values), 2*holdoutDays)
	}

	train := values[:len(values)-holdoutDays]
	test := values[len(values)-holdoutDays:]
	m, err := fitValues(ctx, train, last.AddDate(0, 0, -holdoutDays))
	if err != nil {
		return nil, err
	}

	pred := m.Predict(holdoutDays)
	var absSum, pctSum float64
	pctN := 0
	for i, actual := range test {
		diff := math.Abs(actual - float64(clipRound(pred[i])))
		absSum += diff
		if actual != 0 {
			pctSum += diff / math.Abs(actual)
			pctN++
		}
	}
	acc := &Accuracy{
		TrainDays:   len(train),
		HoldoutDays: holdoutDays,
		MAE:         absSum / float64(holdoutDays),
	}
	if pctN > 0 {
		acc.MAPE = pctSum / float64(pctN) * 100
	}
	return acc, nil
}

// Fingerprint identifica de forma estable una serie exacta (fechas y cantidades).
// Dos series con el mismo fingerprint producen el mismo modelo.
func Fingerprint(series []entity.DailyDemandPoint) string {
	values, first, _ := Densify(series)
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(first.Unix()))
	h.Write(buf[:])
	for _, v := range values {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}
