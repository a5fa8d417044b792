package forecastworker_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/forecastworker"
)

// El binario de test hace de proceso trabajador cuando se lanza con FORECASTWORKER_HELPER.
func TestMain(m *testing.M) {
	switch os.Getenv("FORECASTWORKER_HELPER") {
	case "serve":
		_ = forecastworker.Serve(context.Background(), os.Stdin, os.Stdout)
		os.Exit(0)
	case "garbage":
		_, _ = os.Stdout.WriteString("Traceback: algo salió mal\n")
		os.Exit(0)
	case "crash":
		_, _ = os.Stderr.WriteString("segmentation fault\n")
		os.Exit(139)
	case "hang":
		time.Sleep(time.Minute)
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func helperFitter(mode string) *forecastworker.Fitter {
	return &forecastworker.Fitter{
		Command: os.Args[0],
		Env:     append(os.Environ(), "FORECASTWORKER_HELPER="+mode),
	}
}

func series(n int) []entity.DailyDemandPoint {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	out := make([]entity.DailyDemandPoint, n)
	for i := range out {
		out[i] = entity.DailyDemandPoint{Date: start.AddDate(0, 0, i), ProductID: "p1", Quantity: int64(5 + i%7)}
	}
	return out
}

func TestFitter_AjustaEnProcesoHijo(t *testing.T) {
	m, err := helperFitter("serve").Fit(context.Background(), "p1", series(21))
	require.NoError(t, err)
	assert.True(t, m.Seasonal)
	assert.Equal(t, 21, m.Observations)
	assert.Equal(t, time.Date(2024, 5, 21, 0, 0, 0, 0, time.UTC), m.LastDate)
}

func TestFitter_HistorialInsuficienteViajaComoSentinel(t *testing.T) {
	_, err := helperFitter("serve").Fit(context.Background(), "p1", series(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

func TestFitter_SalidaIlegible(t *testing.T) {
	_, err := helperFitter("garbage").Fit(context.Background(), "p1", series(10))
	assert.ErrorIs(t, err, domain.ErrSerializationFailure)
}

func TestFitter_HijoTerminaConError(t *testing.T) {
	_, err := helperFitter("crash").Fit(context.Background(), "p1", series(10))
	assert.ErrorIs(t, err, domain.ErrFitFailure)
	assert.Contains(t, err.Error(), "segmentation fault")
}

func TestFitter_ContextoVencidoMataAlHijo(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := helperFitter("hang").Fit(ctx, "p1", series(10))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 30*time.Second)
}

func TestDecodeResponse(t *testing.T) {
	_, err := forecastworker.DecodeResponse([]byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrSerializationFailure)

	_, err = forecastworker.DecodeResponse([]byte(`{"error":"boom","kind":"fit_failure"}`))
	assert.ErrorIs(t, err, domain.ErrFitFailure)

	_, err = forecastworker.DecodeResponse([]byte(`{"model":{"alpha":0.3,"seasonal":true,"season":[1,2]}}`))
	assert.ErrorIs(t, err, domain.ErrSerializationFailure)
}

func TestServe_PeticionIlegible(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, forecastworker.Serve(context.Background(), bytes.NewBufferString("no-json"), &out))

	var resp forecastworker.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Nil(t, resp.Model)
	assert.Contains(t, resp.Error, "petición ilegible")
}
