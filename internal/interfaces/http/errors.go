package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockpilot-api/internal/application/dto"
	"github.com/jhoicas/stockpilot-api/internal/domain"
)

// Códigos de error expuestos en el campo "code".
const (
	CodeForecastUnavailable = "FORECAST_UNAVAILABLE"
	CodeInsufficientData    = "INSUFFICIENT_DATA"
	CodeNotFound            = "NOT_FOUND"
	CodeDataUnavailable     = "DATA_UNAVAILABLE"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInternal            = "INTERNAL"
)

// httpError resultado de traducir un error de dominio a la respuesta HTTP.
type httpError struct {
	status int
	body   dto.ErrorResponse
}

// reorderError traduce los errores del cálculo de reorden de un producto.
// domain.ErrForecastUnavailable es siempre 400 con la causa en detail.
func reorderError(err error) httpError {
	if errors.Is(err, domain.ErrForecastUnavailable) {
		return httpError{fiber.StatusBadRequest, dto.ErrorResponse{
			Error:  domain.ErrForecastUnavailable.Error(),
			Code:   CodeForecastUnavailable,
			Detail: cause(err),
		}}
	}
	return commonError(err)
}

// forecastError traduce los errores de los endpoints de pronóstico.
func forecastError(err error) httpError {
	switch {
	case errors.Is(err, domain.ErrNoSalesForProduct), errors.Is(err, domain.ErrInsufficientHistory):
		return httpError{fiber.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: CodeInsufficientData}}
	case errors.Is(err, domain.ErrNotFound):
		return httpError{fiber.StatusNotFound, dto.ErrorResponse{Error: err.Error(), Code: CodeNotFound}}
	}
	return commonError(err)
}

// commonError JoinError, fallos de ajuste, salida ilegible y datos inaccesibles son 500.
func commonError(err error) httpError {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return httpError{fiber.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: CodeInvalidInput}}
	case errors.Is(err, domain.ErrDataUnavailable):
		return httpError{fiber.StatusInternalServerError, dto.ErrorResponse{Error: err.Error(), Code: CodeDataUnavailable}}
	}
	return httpError{fiber.StatusInternalServerError, dto.ErrorResponse{Error: err.Error(), Code: CodeInternal}}
}

// cause quita el prefijo del paraguas para dejar solo el motivo subyacente.
func cause(err error) string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			if !errors.Is(e, domain.ErrForecastUnavailable) {
				return e.Error()
			}
		}
	}
	return err.Error()
}

func (e httpError) send(c *fiber.Ctx) error {
	return c.Status(e.status).JSON(e.body)
}
