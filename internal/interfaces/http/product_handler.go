package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockpilot-api/internal/application/dto"
)

// ProductService consultas de productos (implementado por reorder.UseCase).
type ProductService interface {
	TopSellers(ctx context.Context, n int) ([]dto.TopSellerDTO, error)
}

// ProductHandler maneja las peticiones de productos.
type ProductHandler struct {
	svc ProductService
}

// NewProductHandler construye el handler.
func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// TopSellers godoc
// @Summary      Productos más vendidos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Cantidad de productos"  default(5)
// @Success      200  {array}   dto.TopSellerDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/products/top-sellers [get]
func (h *ProductHandler) TopSellers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}
	if limit > 100 {
		limit = 100
	}
	out, err := h.svc.TopSellers(c.UserContext(), limit)
	if err != nil {
		return commonError(err).send(c)
	}
	return c.JSON(out)
}
