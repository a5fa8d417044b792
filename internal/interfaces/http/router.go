package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockpilot-api/internal/application/dto"
)

// Roles con acceso a la API cuando JWT está activo.
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
	RoleService = "service"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Reorder     ReorderService
	Forecast    ForecastService
	Products    ProductService
	JWTSecret   string // vacío: rutas /api públicas
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: deps.ServiceName})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), RequireRole(RoleAdmin, RoleAnalyst, RoleService))

	// Reorden (la ruta del informe va antes del parámetro para no quedar capturada por él)
	reorderHandler := NewReorderHandler(deps.Reorder)
	reorder := api.Group("/reorder")
	reorder.Get("/", reorderHandler.List)
	reorder.Get("/report.pdf", reorderHandler.Report)
	reorder.Get("/:product_id", reorderHandler.GetByProduct)

	// Pronóstico
	forecastHandler := NewForecastHandler(deps.Forecast)
	forecast := api.Group("/forecast")
	forecast.Get("/", forecastHandler.General)
	forecast.Get("/:product_id", forecastHandler.GetByProduct)
	forecast.Get("/:product_id/accuracy", forecastHandler.Accuracy)

	// Productos
	productHandler := NewProductHandler(deps.Products)
	api.Get("/products/top-sellers", productHandler.TopSellers)
}
