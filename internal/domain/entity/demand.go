package entity

import "time"

// DailyDemandPoint demanda agregada de un producto en un día (derivado, no persistido).
// Date siempre es medianoche UTC.
type DailyDemandPoint struct {
	Date      time.Time
	ProductID string
	Quantity  int64
}

// ForecastPoint demanda pronosticada para un día futuro.
type ForecastPoint struct {
	Date              time.Time
	PredictedQuantity int64 // entero >= 0
}

// DateOnly trunca t a su fecha calendario (medianoche UTC), descartando la zona horaria.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
