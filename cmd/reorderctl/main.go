// Command reorderctl ejecuta el pipeline de reorden desde la línea de comandos
// y hace de proceso trabajador para el ajuste aislado de modelos (fit-worker).
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "reorderctl",
		Short:         "Pronóstico de demanda y puntos de reorden de StockPilot",
		Long:          "Calcula pronósticos y puntos de reorden sobre el origen de datos configurado (STORE_DRIVER) e imprime el resultado en JSON.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVar(&pretty, "pretty", true, "JSON indentado")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "nivel de log (por defecto LOG_LEVEL)")

	root.AddCommand(newReorderCommand())
	root.AddCommand(newForecastCommand())
	root.AddCommand(newEvaluateCommand())
	root.AddCommand(newTopSellersCommand())
	root.AddCommand(newReportCommand())
	root.AddCommand(newFitWorkerCommand())
	return root
}
