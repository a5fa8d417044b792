// Package bootstrap arma el grafo de dependencias compartido por cmd/api y cmd/reorderctl:
// origen de datos, pronosticador (con caché y artefactos) y motor de reorden.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/stockpilot-api/internal/application/dataset"
	appforecast "github.com/jhoicas/stockpilot-api/internal/application/forecast"
	"github.com/jhoicas/stockpilot-api/internal/application/reorder"
	"github.com/jhoicas/stockpilot-api/internal/domain/inventory"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/boltstore"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/csvstore"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/forecastworker"
	inframongo "github.com/jhoicas/stockpilot-api/internal/infrastructure/mongo"
	infrapdf "github.com/jhoicas/stockpilot-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/workbook"
	"github.com/jhoicas/stockpilot-api/pkg/config"
	"github.com/jhoicas/stockpilot-api/pkg/logger"
	"github.com/jhoicas/stockpilot-api/pkg/metrics"
)

// App dependencias construidas. Close libera conexiones, caché y archivo de artefactos.
type App struct {
	Reorder  *reorder.UseCase
	Forecast *appforecast.Service
	Store    repository.SalesDataRepository

	closers []func() error
}

// New construye la aplicación a partir de la configuración. reg puede ser nil (sin métricas).
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, log *logger.Logger) (*App, error) {
	app := &App{}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close()
		}
	}()

	store, err := app.openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app.Store = store

	var artifacts appforecast.ArtifactStore
	if cfg.Forecast.ArtifactPath != "" {
		bolt, err := boltstore.Open(cfg.Forecast.ArtifactPath)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, bolt.Close)
		artifacts = bolt
		log.Info().Str("path", cfg.Forecast.ArtifactPath).Msg("artefactos de modelo activados")
	}

	var fitter appforecast.Fitter = appforecast.InProcessFitter{}
	if cfg.Forecast.Isolation == "subprocess" {
		fitter = forecastworker.NewFitter(cfg.Forecast.WorkerCommand)
	}

	m := metrics.NewForecastMetrics(reg)
	svc, err := appforecast.NewService(fitter, artifacts, appforecast.Options{
		FitTimeout: cfg.Forecast.FitTimeout,
		CacheSize:  cfg.Forecast.CacheSize,
		CacheTTL:   cfg.Forecast.CacheTTL,
	}, m, log.Child("forecast"))
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() error { svc.Close(); return nil })
	app.Forecast = svc

	loader := dataset.NewLoader(store, cfg.Store.Timeout, log.Child("dataset"))
	app.Reorder = reorder.NewUseCase(loader, svc, infrapdf.NewMarotoPDFGenerator(), reorder.Config{
		Policy: inventory.Policy{
			SafetyStockFactor: cfg.Reorder.SafetyStockFactor,
			LeadTimeDays:      cfg.Reorder.LeadTimeDays,
		},
		HorizonDays:        cfg.Forecast.HorizonDays,
		GeneralHorizonDays: cfg.Forecast.GeneralHorizonDays,
		HoldoutDays:        cfg.Forecast.HoldoutDays,
		Workers:            cfg.Forecast.Workers,
	}, m, log.Child("reorder"))

	log.Info().
		Str("store", cfg.Store.Driver).
		Str("isolation", fitter.Name()).
		Int("workers", cfg.Forecast.Workers).
		Msg("motor de reorden listo")
	ok = true
	return app, nil
}

// Close libera los recursos en orden inverso a su creación.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.SalesDataRepository, error) {
	switch cfg.Store.Driver {
	case "mongo":
		client, err := inframongo.Connect(ctx, cfg.Mongo.URI, cfg.Store.Timeout)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { return disconnect(client) })
		log.Info().Str("database", cfg.Mongo.Database).Msg("conectado a MongoDB")
		return inframongo.NewSalesDataRepository(client, cfg.Mongo.Database), nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name, int32(cfg.Forecast.Workers)+4)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		log.Info().Msg("conectado a PostgreSQL")
		return postgres.NewSalesDataRepository(pool), nil
	case "workbook":
		log.Info().Str("path", cfg.Files.WorkbookPath).Msg("origen de datos: libro XLSX")
		return workbook.NewStore(cfg.Files.WorkbookPath), nil
	case "csv":
		store, err := csvstore.NewStore(cfg.Files.CSVDir, cfg.Files.CSVCharset)
		if err != nil {
			return nil, err
		}
		log.Info().Str("dir", cfg.Files.CSVDir).Str("charset", cfg.Files.CSVCharset).Msg("origen de datos: CSV")
		return store, nil
	default:
		return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.Store.Driver)
	}
}

func disconnect(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
