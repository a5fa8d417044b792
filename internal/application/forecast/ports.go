package forecast

import (
	"context"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/forecast"
)

// Fitter ajusta un modelo para la serie diaria de un producto.
// Hay dos implementaciones: en proceso (InProcessFitter) y en un proceso hijo (forecastworker).
type Fitter interface {
	Name() string
	Fit(ctx context.Context, productID string, series []entity.DailyDemandPoint) (*forecast.Model, error)
}

// ArtifactStore persiste modelos ajustados entre reinicios.
// Get devuelve (nil, nil) cuando no hay artefacto para la clave.
type ArtifactStore interface {
	Get(ctx context.Context, key string) (*forecast.Model, error)
	Put(ctx context.Context, key string, m *forecast.Model) error
}

// InProcessFitter ajusta el modelo en la goroutine que lo invoca.
type InProcessFitter struct{}

// Name etiqueta usada en métricas.
func (InProcessFitter) Name() string { return "inprocess" }

// Fit delega en forecast.Fit.
func (InProcessFitter) Fit(ctx context.Context, _ string, series []entity.DailyDemandPoint) (*forecast.Model, error) {
	return forecast.Fit(ctx, series)
}
