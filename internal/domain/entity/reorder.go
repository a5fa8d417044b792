package entity

import "time"

// ReorderResult decisión de reposición para un producto (derivado; vive solo durante la petición).
type ReorderResult struct {
	ProductID        string
	ProductName      string
	CurrentInventory int64
	AvgDailyUsage    float64
	ReorderPoint     int64
	SafetyStock      int64
	ReorderNeeded    bool
	DaysUntilReorder float64
	LeadTimeDays     int
	CalculatedOn     time.Time
}

// TopSeller producto con su cantidad total vendida.
type TopSeller struct {
	ProductID    string
	ProductName  string
	QuantitySold int64
}
