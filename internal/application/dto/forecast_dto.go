package dto

import "github.com/jhoicas/stockpilot-api/internal/domain/entity"

// ForecastPointDTO demanda pronosticada para un día.
type ForecastPointDTO struct {
	Date              string `json:"date"` // YYYY-MM-DD
	PredictedQuantity int64  `json:"predicted_quantity"`
}

// ProductForecastResponse respuesta de GET /api/forecast/:product_id.
type ProductForecastResponse struct {
	ProductID string             `json:"product_id"`
	Forecast  []ForecastPointDTO `json:"forecast"`
}

// GeneralForecastResponse respuesta de GET /api/forecast (serie de toda la tienda).
type GeneralForecastResponse struct {
	HorizonDays int                `json:"horizon_days"`
	Forecast    []ForecastPointDTO `json:"forecast"`
}

// ForecastAccuracyResponse respuesta de GET /api/forecast/:product_id/accuracy.
type ForecastAccuracyResponse struct {
	ProductID   string  `json:"product_id"`
	TrainDays   int     `json:"train_days"`
	HoldoutDays int     `json:"holdout_days"`
	MAE         float64 `json:"mae"`
	MAPE        float64 `json:"mape"`
}

// NewForecastPoints convierte los puntos de dominio a su forma pública.
func NewForecastPoints(points []entity.ForecastPoint) []ForecastPointDTO {
	out := make([]ForecastPointDTO, len(points))
	for i, p := range points {
		out[i] = ForecastPointDTO{Date: p.Date.Format(DateLayout), PredictedQuantity: p.PredictedQuantity}
	}
	return out
}
