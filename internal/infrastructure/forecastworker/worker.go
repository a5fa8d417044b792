// Package forecastworker ajusta modelos en un proceso hijo (reorderctl fit-worker).
// Un fallo nativo, un bucle sin fin o un consumo de memoria descontrolado quedan
// contenidos en el hijo; el padre solo ve un error de dominio.
//
// Protocolo: el padre escribe una petición JSON en stdin del hijo y lee una
// respuesta JSON de stdout. La respuesta es el modelo serializado o {"error": "..."}.
package forecastworker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	appforecast "github.com/jhoicas/stockpilot-api/internal/application/forecast"
	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/forecast"
)

// Subcommand argumento con el que se invoca al binario trabajador.
const Subcommand = "fit-worker"

// Request petición enviada al hijo.
type Request struct {
	ProductID string        `json:"product_id"`
	Series    []SeriesPoint `json:"series"`
}

// SeriesPoint un día de la serie de demanda.
type SeriesPoint struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Quantity int64  `json:"quantity"`
}

// Response respuesta del hijo: exactamente uno de los dos campos.
type Response struct {
	Model *forecast.Model `json:"model,omitempty"`
	Error string          `json:"error,omitempty"`
	// Kind clasifica el error para reconstruir el sentinel de dominio en el padre.
	Kind string `json:"kind,omitempty"`
}

const (
	kindInsufficientHistory = "insufficient_history"
	kindFitFailure          = "fit_failure"
)

const dateLayout = "2006-01-02"

// Fitter implementa appforecast.Fitter lanzando un proceso por ajuste.
type Fitter struct {
	Command string
	Args    []string // por defecto []string{Subcommand}
	Env     []string // nil hereda el entorno del padre
}

var _ appforecast.Fitter = (*Fitter)(nil)

// NewFitter crea el ajustador que invoca `command fit-worker`.
func NewFitter(command string) *Fitter {
	return &Fitter{Command: command, Args: []string{Subcommand}}
}

// Name etiqueta usada en métricas.
func (f *Fitter) Name() string { return "subprocess" }

// Fit serializa la serie, ejecuta el hijo y decodifica su respuesta. El proceso se
// mata si ctx vence (el servicio aplica el tope FORECAST_FIT_TIMEOUT).
func (f *Fitter) Fit(ctx context.Context, productID string, series []entity.DailyDemandPoint) (*forecast.Model, error) {
	payload, err := json.Marshal(NewRequest(productID, series))
	if err != nil {
		return nil, fmt.Errorf("%w: serializar petición: %w", domain.ErrFitFailure, err)
	}

	cmd := exec.CommandContext(ctx, f.Command, f.Args...)
	cmd.Stdin = bytes.NewReader(payload)
	if f.Env != nil {
		cmd.Env = f.Env
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if runErr != nil && stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: proceso trabajador: %w (%s)", domain.ErrFitFailure, runErr, tail(stderr.String()))
	}
	return DecodeResponse(stdout.Bytes())
}

// NewRequest construye la petición para una serie.
func NewRequest(productID string, series []entity.DailyDemandPoint) Request {
	req := Request{ProductID: productID, Series: make([]SeriesPoint, len(series))}
	for i, p := range series {
		req.Series[i] = SeriesPoint{Date: p.Date.Format(dateLayout), Quantity: p.Quantity}
	}
	return req
}

// DecodeResponse interpreta la salida del hijo. Salida que no es JSON válido, o que
// no trae ni modelo ni error, es domain.ErrSerializationFailure.
func DecodeResponse(raw []byte) (*forecast.Model, error) {
	var resp Response
	if err := json.Unmarshal(bytes.TrimSpace(raw), &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSerializationFailure, err)
	}
	if resp.Error != "" {
		switch resp.Kind {
		case kindInsufficientHistory:
			return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientHistory, resp.Error)
		default:
			return nil, fmt.Errorf("%w: %s", domain.ErrFitFailure, resp.Error)
		}
	}
	if resp.Model == nil {
		return nil, fmt.Errorf("%w: respuesta sin modelo", domain.ErrSerializationFailure)
	}
	if err := resp.Model.Validate(); err != nil {
		return nil, err
	}
	return resp.Model, nil
}

// Serve lado hijo: lee una petición de r, ajusta y escribe la respuesta en w.
// Solo devuelve error si no puede escribir; los fallos de ajuste viajan en la respuesta.
func Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	resp := handle(ctx, r)
	return json.NewEncoder(w).Encode(resp)
}

func handle(ctx context.Context, r io.Reader) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = Response{Error: fmt.Sprintf("pánico durante el ajuste: %v", rec), Kind: kindFitFailure}
		}
	}()

	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Response{Error: "petición ilegible: " + err.Error(), Kind: kindFitFailure}
	}
	series := make([]entity.DailyDemandPoint, 0, len(req.Series))
	for _, p := range req.Series {
		d, err := time.Parse(dateLayout, p.Date)
		if err != nil {
			return Response{Error: fmt.Sprintf("fecha inválida %q", p.Date), Kind: kindFitFailure}
		}
		series = append(series, entity.DailyDemandPoint{Date: d, ProductID: req.ProductID, Quantity: p.Quantity})
	}

	m, err := forecast.Fit(ctx, series)
	if err != nil {
		kind := kindFitFailure
		if errors.Is(err, domain.ErrInsufficientHistory) {
			kind = kindInsufficientHistory
		}
		return Response{Error: err.Error(), Kind: kind}
	}
	return Response{Model: m}
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 512 {
		return "…" + s[len(s)-512:]
	}
	return s
}
