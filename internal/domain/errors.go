package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")

	// Capa de acceso a datos: almacén inaccesible o colecciones obligatorias vacías.
	ErrDataUnavailable = errors.New("datos no disponibles")

	// Agregación de demanda.
	ErrNoSalesForProduct = errors.New("no hay ventas atribuibles al producto")
	ErrJoinError         = errors.New("línea de venta sin venta asociada")

	// Pronóstico.
	ErrInsufficientHistory  = errors.New("historial insuficiente: se requieren al menos 2 fechas distintas")
	ErrFitFailure           = errors.New("el ajuste del modelo falló")
	ErrFitTimeout           = errors.New("el ajuste del modelo excedió el tiempo permitido")
	ErrSerializationFailure = errors.New("salida del pronosticador ilegible")

	// Paraguas usado por el motor de reorden cuando el pronóstico no se pudo obtener.
	ErrForecastUnavailable = errors.New("pronóstico no disponible")
)
