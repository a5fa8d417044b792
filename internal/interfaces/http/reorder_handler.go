package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockpilot-api/internal/application/dto"
)

// ReorderService operaciones de reorden que expone la API (implementado por reorder.UseCase).
type ReorderService interface {
	Calculate(ctx context.Context, productID string) (*dto.ReorderResultDTO, error)
	CalculateAll(ctx context.Context) (*dto.ReorderListResponse, error)
	Report(ctx context.Context) ([]byte, error)
}

// ReorderHandler maneja las peticiones de puntos de reorden.
type ReorderHandler struct {
	svc ReorderService
}

// NewReorderHandler construye el handler.
func NewReorderHandler(svc ReorderService) *ReorderHandler {
	return &ReorderHandler{svc: svc}
}

// List godoc
// @Summary      Puntos de reorden de todos los productos
// @Description  Productos que requieren reposición primero; dentro de cada grupo, menos días hasta el reorden primero.
// @Tags         reorder
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReorderListResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reorder [get]
func (h *ReorderHandler) List(c *fiber.Ctx) error {
	out, err := h.svc.CalculateAll(c.UserContext())
	if err != nil {
		return commonError(err).send(c)
	}
	return c.JSON(out)
}

// GetByProduct godoc
// @Summary      Punto de reorden de un producto
// @Tags         reorder
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReorderResultDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reorder/{product_id} [get]
func (h *ReorderHandler) GetByProduct(c *fiber.Ctx) error {
	id := c.Params("product_id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Error: "product_id es requerido"})
	}
	out, err := h.svc.Calculate(c.UserContext(), id)
	if err != nil {
		return reorderError(err).send(c)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Informe PDF de reposición
// @Tags         reorder
// @Security     Bearer
// @Produce      application/pdf
// @Success      200
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reorder/report.pdf [get]
func (h *ReorderHandler) Report(c *fiber.Ctx) error {
	raw, err := h.svc.Report(c.UserContext())
	if err != nil {
		return commonError(err).send(c)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="reorder-report.pdf"`)
	return c.Send(raw)
}
