package dto

// DateLayout formato de todas las fechas expuestas (ISO YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ErrorResponse cuerpo de error HTTP. Error siempre está presente; Detail lleva la causa
// subyacente cuando el error es un paraguas (p. ej. pronóstico no disponible).
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse respuesta de GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
