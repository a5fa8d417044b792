package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockpilot-api/internal/application/dto"
)

// maxHorizonDays tope del parámetro days.
const maxHorizonDays = 365

// ForecastService operaciones de pronóstico (implementado por reorder.UseCase).
type ForecastService interface {
	Forecast(ctx context.Context, productID string, horizon int) (*dto.ProductForecastResponse, error)
	GeneralForecast(ctx context.Context, horizon int) (*dto.GeneralForecastResponse, error)
	Evaluate(ctx context.Context, productID string) (*dto.ForecastAccuracyResponse, error)
}

// ForecastHandler maneja las peticiones de pronóstico de demanda.
type ForecastHandler struct {
	svc ForecastService
}

// NewForecastHandler construye el handler.
func NewForecastHandler(svc ForecastService) *ForecastHandler {
	return &ForecastHandler{svc: svc}
}

// General godoc
// @Summary      Pronóstico de demanda de toda la tienda
// @Tags         forecast
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Días a pronosticar"  default(7)
// @Success      200  {object}  dto.GeneralForecastResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/forecast [get]
func (h *ForecastHandler) General(c *fiber.Ctx) error {
	days, ok := horizonParam(c)
	if !ok {
		return invalidHorizon(c)
	}
	out, err := h.svc.GeneralForecast(c.UserContext(), days)
	if err != nil {
		return forecastError(err).send(c)
	}
	return c.JSON(out)
}

// GetByProduct godoc
// @Summary      Pronóstico de demanda de un producto
// @Tags         forecast
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "ID del producto"
// @Param        days        query  int     false  "Días a pronosticar"  default(30)
// @Success      200  {object}  dto.ProductForecastResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/forecast/{product_id} [get]
func (h *ForecastHandler) GetByProduct(c *fiber.Ctx) error {
	days, ok := horizonParam(c)
	if !ok {
		return invalidHorizon(c)
	}
	out, err := h.svc.Forecast(c.UserContext(), c.Params("product_id"), days)
	if err != nil {
		return forecastError(err).send(c)
	}
	return c.JSON(out)
}

// Accuracy godoc
// @Summary      Precisión del modelo de un producto (MAE / MAPE sobre los últimos días)
// @Tags         forecast
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ForecastAccuracyResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/forecast/{product_id}/accuracy [get]
func (h *ForecastHandler) Accuracy(c *fiber.Ctx) error {
	out, err := h.svc.Evaluate(c.UserContext(), c.Params("product_id"))
	if err != nil {
		return forecastError(err).send(c)
	}
	return c.JSON(out)
}

// horizonParam lee ?days=; 0 significa el horizonte por defecto.
func horizonParam(c *fiber.Ctx) (int, bool) {
	if c.Query("days") == "" {
		return 0, true
	}
	days := c.QueryInt("days", -1)
	return days, days >= 1 && days <= maxHorizonDays
}

func invalidHorizon(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeInvalidInput, Error: "days debe estar entre 1 y 365"})
}
