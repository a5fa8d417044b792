package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

// ReorderResultDTO decisión de reposición de un producto (forma pública del resultado).
type ReorderResultDTO struct {
	ProductID        string  `json:"product_id"`
	ProductName      string  `json:"product_name"`
	CurrentInventory int64   `json:"current_inventory"`
	AvgDailyUsage    float64 `json:"avg_daily_usage"`
	ReorderPoint     int64   `json:"reorder_point"`
	SafetyStock      int64   `json:"safety_stock"`
	ReorderNeeded    bool    `json:"reorder_needed"`
	DaysUntilReorder float64 `json:"days_until_reorder"`
	LeadTimeDays     int     `json:"lead_time_days"`
	CalculatedOn     string  `json:"calculated_on"` // YYYY-MM-DD
}

// ReorderSummaryDTO totales del cálculo masivo.
type ReorderSummaryDTO struct {
	TotalProducts          int `json:"total_products"`
	ProductsNeedingReorder int `json:"products_needing_reorder"`
}

// ReorderListResponse respuesta de GET /api/reorder.
type ReorderListResponse struct {
	ReorderSummary ReorderSummaryDTO  `json:"reorder_summary"`
	ReorderPoints  []ReorderResultDTO `json:"reorder_points"`
}

// TopSellerDTO producto con su volumen vendido.
type TopSellerDTO struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	QuantitySold int64  `json:"quantity_sold"`
}

// NewReorderResultDTO convierte el resultado de dominio en su forma pública.
func NewReorderResultDTO(r entity.ReorderResult) ReorderResultDTO {
	return ReorderResultDTO{
		ProductID:        r.ProductID,
		ProductName:      r.ProductName,
		CurrentInventory: r.CurrentInventory,
		AvgDailyUsage:    r.AvgDailyUsage,
		ReorderPoint:     r.ReorderPoint,
		SafetyStock:      r.SafetyStock,
		ReorderNeeded:    r.ReorderNeeded,
		DaysUntilReorder: r.DaysUntilReorder,
		LeadTimeDays:     r.LeadTimeDays,
		CalculatedOn:     r.CalculatedOn.Format(DateLayout),
	}
}

// NewReorderListResponse arma la respuesta del cálculo masivo a partir de resultados ya ordenados.
func NewReorderListResponse(results []ReorderResultDTO) ReorderListResponse {
	needing := 0
	for _, r := range results {
		if r.ReorderNeeded {
			needing++
		}
	}
	if results == nil {
		results = []ReorderResultDTO{}
	}
	return ReorderListResponse{
		ReorderSummary: ReorderSummaryDTO{TotalProducts: len(results), ProductsNeedingReorder: needing},
		ReorderPoints:  results,
	}
}

// ReorderReportDTO datos del informe PDF de reposición.
type ReorderReportDTO struct {
	Title       string
	GeneratedOn string // YYYY-MM-DD
	Summary     ReorderSummaryDTO
	Rows        []ReorderReportRowDTO
	Skipped     int // productos sin pronóstico disponible
}

// ReorderReportRowDTO fila del informe: el resultado más la valoración del stock.
type ReorderReportRowDTO struct {
	ReorderResultDTO
	StockValue decimal.Decimal // Σ existencias × MRP
	NextExpiry string          // YYYY-MM-DD del lote con stock que vence primero; vacío si no se conoce
}
