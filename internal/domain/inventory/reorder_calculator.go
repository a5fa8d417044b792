// Package inventory contiene las reglas puras de reposición (servicios de dominio sin I/O).
package inventory

import (
	"math"
	"time"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

// Policy política de reposición fija para todos los productos.
type Policy struct {
	SafetyStockFactor float64 // múltiplo de la demanda media (1.5)
	LeadTimeDays      int     // días de reaprovisionamiento (7)
}

// DefaultPolicy valores usados por StockPilot.
func DefaultPolicy() Policy {
	return Policy{SafetyStockFactor: 1.5, LeadTimeDays: 7}
}

// ReorderInput datos ya resueltos de un producto.
type ReorderInput struct {
	ProductID        string
	ProductName      string
	CurrentInventory int64
	Forecast         []entity.ForecastPoint
	Today            time.Time
}

// AvgDailyUsage media de las cantidades pronosticadas; 0 para un pronóstico vacío.
func AvgDailyUsage(points []entity.ForecastPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum int64
	for _, p := range points {
		sum += p.PredictedQuantity
	}
	return float64(sum) / float64(len(points))
}

// CalculateReorder aplica la fórmula de punto de reorden:
//
//	SafetyStock  = avg × factor × √lead
//	ReorderPoint = avg × lead + SafetyStock
//	DaysUntil    = max(0, (inv − ROP) / avg), 0 si avg = 0
//	Needed       = inv <= ROP
//
// La decisión se toma con valores sin redondear; el redondeo solo afecta la salida.
func CalculateReorder(in ReorderInput, p Policy) entity.ReorderResult {
	avg := AvgDailyUsage(in.Forecast)
	lead := float64(p.LeadTimeDays)
	inv := float64(in.CurrentInventory)

	safety := avg * p.SafetyStockFactor * math.Sqrt(lead)
	rop := avg*lead + safety

	days := 0.0
	if avg > 0 {
		days = math.Max(0, (inv-rop)/avg)
	}

	name := in.ProductName
	if name == "" {
		name = entity.UnknownProductName
	}

	return entity.ReorderResult{
		ProductID:        in.ProductID,
		ProductName:      name,
		CurrentInventory: in.CurrentInventory,
		AvgDailyUsage:    roundTo(avg, 2),
		ReorderPoint:     int64(math.Round(rop)),
		SafetyStock:      int64(math.Round(safety)),
		ReorderNeeded:    inv <= rop,
		DaysUntilReorder: roundTo(days, 1),
		LeadTimeDays:     p.LeadTimeDays,
		CalculatedOn:     entity.DateOnly(in.Today),
	}
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
