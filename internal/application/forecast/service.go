// Package forecast orquesta el ajuste de modelos por producto: aislamiento de fallos
// (tope de tiempo y contención de pánicos), caché acotada de modelos y artefactos persistidos.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/forecast"
	"github.com/jhoicas/stockpilot-api/pkg/logger"
	"github.com/jhoicas/stockpilot-api/pkg/metrics"
)

// StoreSeriesID clave usada para la serie agregada de toda la tienda.
const StoreSeriesID = "__store__"

// Options parámetros del servicio (ver FORECAST_* en pkg/config).
type Options struct {
	FitTimeout time.Duration
	CacheSize  int64         // máximo de modelos en memoria; 0 desactiva la caché
	CacheTTL   time.Duration // 0 = sin expiración
}

// Service ajusta y reutiliza modelos de pronóstico. Es seguro para uso concurrente.
type Service struct {
	fitter    Fitter
	artifacts ArtifactStore
	cache     *ristretto.Cache[string, *forecast.Model]
	opts      Options
	metrics   *metrics.ForecastMetrics
	log       *logger.Logger
}

// NewService construye el servicio. artifacts y m pueden ser nil.
func NewService(fitter Fitter, artifacts ArtifactStore, opts Options, m *metrics.ForecastMetrics, log *logger.Logger) (*Service, error) {
	if fitter == nil {
		fitter = InProcessFitter{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if opts.FitTimeout <= 0 {
		opts.FitTimeout = 20 * time.Second
	}
	s := &Service{fitter: fitter, artifacts: artifacts, opts: opts, metrics: m, log: log}
	if opts.CacheSize > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, *forecast.Model]{
			NumCounters: opts.CacheSize * 10,
			MaxCost:     opts.CacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("caché de modelos: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Close libera la caché.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// Forecast devuelve horizon días de demanda pronosticada para el producto.
func (s *Service) Forecast(ctx context.Context, productID string, series []entity.DailyDemandPoint, horizon int) ([]entity.ForecastPoint, error) {
	m, err := s.Model(ctx, productID, series)
	if err != nil {
		return nil, err
	}
	return m.Forecast(horizon), nil
}

// ForecastSeries pronostica la serie agregada de toda la tienda.
func (s *Service) ForecastSeries(ctx context.Context, series []entity.DailyDemandPoint, horizon int) ([]entity.ForecastPoint, error) {
	return s.Forecast(ctx, StoreSeriesID, series, horizon)
}

// Model devuelve el modelo para la serie exacta: caché en memoria, después artefacto
// persistido y, si no existe, un ajuste nuevo aislado.
func (s *Service) Model(ctx context.Context, productID string, series []entity.DailyDemandPoint) (*forecast.Model, error) {
	if got := forecast.DistinctDates(series); got < forecast.MinDistinctDates {
		s.metrics.ObserveFit(s.fitter.Name(), metrics.ResultRejected, 0)
		return nil, fmt.Errorf("%w (producto %s, fechas: %d)", domain.ErrInsufficientHistory, productID, got)
	}

	key := productID + ":" + forecast.Fingerprint(series)
	if s.cache != nil {
		if m, ok := s.cache.Get(key); ok {
			s.metrics.IncCacheHit("memory")
			return m, nil
		}
	}
	if m := s.loadArtifact(ctx, key); m != nil {
		s.metrics.IncCacheHit("artifact")
		s.remember(key, m)
		return m, nil
	}

	start := time.Now()
	m, err := isolate(ctx, s.opts.FitTimeout, func(fitCtx context.Context) (*forecast.Model, error) {
		return s.fitter.Fit(fitCtx, productID, series)
	})
	s.metrics.ObserveFit(s.fitter.Name(), resultLabel(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("producto %s: %w", productID, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("producto %s: %w", productID, err)
	}

	s.remember(key, m)
	s.saveArtifact(ctx, key, m)
	return m, nil
}

// Evaluate mide el error del modelo contra los últimos holdoutDays días, bajo el mismo tope de tiempo.
func (s *Service) Evaluate(ctx context.Context, series []entity.DailyDemandPoint, holdoutDays int) (*forecast.Accuracy, error) {
	return isolate(ctx, s.opts.FitTimeout, func(fitCtx context.Context) (*forecast.Accuracy, error) {
		return forecast.Evaluate(fitCtx, series, holdoutDays)
	})
}

func (s *Service) remember(key string, m *forecast.Model) {
	if s.cache == nil {
		return
	}
	if s.cache.SetWithTTL(key, m, 1, s.opts.CacheTTL) {
		s.cache.Wait()
	}
}

func (s *Service) loadArtifact(ctx context.Context, key string) *forecast.Model {
	if s.artifacts == nil {
		return nil
	}
	m, err := s.artifacts.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("artefacto de modelo ilegible; se reajusta")
		return nil
	}
	if m == nil {
		return nil
	}
	if err := m.Validate(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("artefacto de modelo inválido; se reajusta")
		return nil
	}
	return m
}

func (s *Service) saveArtifact(ctx context.Context, key string, m *forecast.Model) {
	if s.artifacts == nil {
		return
	}
	if err := s.artifacts.Put(ctx, key, m); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar el artefacto de modelo")
	}
}

// isolate ejecuta fn en su propia goroutine con un tope de tiempo. Un pánico dentro de fn
// se convierte en domain.ErrFitFailure; agotar el tope, en domain.ErrFitTimeout.
// La cancelación del contexto del llamador se devuelve tal cual.
func isolate[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	type outcome struct {
		val T
		err error
	}
	fitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: pánico durante el ajuste: %v", domain.ErrFitFailure, r)}
			}
		}()
		v, err := fn(fitCtx)
		done <- outcome{val: v, err: err}
	}()

	var zero T
	select {
	case o := <-done:
		if o.err != nil {
			return zero, classify(ctx, o.err, timeout)
		}
		return o.val, nil
	case <-fitCtx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, fmt.Errorf("%w (%s)", domain.ErrFitTimeout, timeout)
	}
}

// classify normaliza el error del ajustador a la taxonomía de dominio.
func classify(ctx context.Context, err error, timeout time.Duration) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientHistory),
		errors.Is(err, domain.ErrFitFailure),
		errors.Is(err, domain.ErrFitTimeout),
		errors.Is(err, domain.ErrSerializationFailure):
		return err
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return fmt.Errorf("%w (%s)", domain.ErrFitTimeout, timeout)
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("%w: %w", domain.ErrFitFailure, err)
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, domain.ErrFitTimeout):
		return metrics.ResultTimeout
	case errors.Is(err, domain.ErrInsufficientHistory):
		return metrics.ResultRejected
	default:
		return metrics.ResultFailure
	}
}
