package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stockpilot-api/internal/bootstrap"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/forecastworker"
	"github.com/jhoicas/stockpilot-api/pkg/config"
	"github.com/jhoicas/stockpilot-api/pkg/logger"
)

var (
	pretty   bool
	logLevel string
)

// withApp carga la configuración, construye las dependencias y ejecuta fn.
// Los logs van a stderr para que stdout quede solo con el JSON.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := cfg.App.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: level, Output: cmd.ErrOrStderr()})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, nil, log)
	if err != nil {
		return err
	}
	defer app.Close()

	out, err := fn(ctx, app)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func newReorderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder [product_id]",
		Short: "Punto de reorden de un producto, o de todos si no se indica",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) (any, error) {
				if len(args) == 1 {
					return app.Reorder.Calculate(ctx, args[0])
				}
				return app.Reorder.CalculateAll(ctx)
			})
		},
	}
}

func newForecastCommand() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "forecast [product_id]",
		Short: "Pronóstico diario de un producto, o de toda la tienda si no se indica",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) (any, error) {
				if len(args) == 1 {
					return app.Reorder.Forecast(ctx, args[0], days)
				}
				return app.Reorder.GeneralForecast(ctx, days)
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "días a pronosticar (0: FORECAST_HORIZON_DAYS o FORECAST_GENERAL_HORIZON_DAYS)")
	return cmd
}

func newEvaluateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <product_id>",
		Short: "MAE y MAPE del modelo sobre los últimos días de ventas del producto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) (any, error) {
				return app.Reorder.Evaluate(ctx, args[0])
			})
		},
	}
}

func newTopSellersCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top-sellers",
		Short: "Productos con más unidades vendidas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) (any, error) {
				return app.Reorder.TopSellers(ctx, limit)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "cantidad de productos (0: todos)")
	return cmd
}

func newReportCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Genera el informe PDF de reposición",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) (any, error) {
				raw, err := app.Reorder.Report(ctx)
				if err != nil {
					return nil, err
				}
				if err := os.WriteFile(out, raw, 0o644); err != nil {
					return nil, fmt.Errorf("escribir %s: %w", out, err)
				}
				return map[string]any{"path": out, "bytes": len(raw)}, nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "reorder-report.pdf", "archivo de salida")
	return cmd
}

// newFitWorkerCommand proceso hijo del ajustador aislado: no lee configuración ni datos,
// solo la petición JSON de stdin.
func newFitWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:    forecastworker.Subcommand,
		Short:  "Ajusta un modelo leyendo la serie de stdin (uso interno)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return forecastworker.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
