package reorder

import (
	"context"

	"github.com/jhoicas/stockpilot-api/internal/application/dataset"
	"github.com/jhoicas/stockpilot-api/internal/application/dto"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/forecast"
)

// SnapshotLoader entrega una instantánea inmutable de los datos.
type SnapshotLoader interface {
	Load(ctx context.Context) (*dataset.Snapshot, error)
}

// Forecaster pronostica series diarias de demanda (implementado por application/forecast.Service).
type Forecaster interface {
	Forecast(ctx context.Context, productID string, series []entity.DailyDemandPoint, horizon int) ([]entity.ForecastPoint, error)
	ForecastSeries(ctx context.Context, series []entity.DailyDemandPoint, horizon int) ([]entity.ForecastPoint, error)
	Evaluate(ctx context.Context, series []entity.DailyDemandPoint, holdoutDays int) (*forecast.Accuracy, error)
}

// ReportGenerator renderiza el informe de reposición (PDF).
type ReportGenerator interface {
	GenerateReorderReport(report *dto.ReorderReportDTO) ([]byte, error)
}
