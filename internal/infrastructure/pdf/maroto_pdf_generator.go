// Package pdf genera el informe imprimible de reposición.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de cálculo │ Resumen (total/reponer) │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Stock | Uso/día | ROP | SS | Días | Vence │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: política aplicada + productos omitidos              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stockpilot-api/internal/application/dto"
	"github.com/jhoicas/stockpilot-api/internal/application/reorder"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa reorder.ReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

var _ reorder.ReportGenerator = (*MarotoPDFGenerator)(nil)

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateReorderReport genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReorderReport(report *dto.ReorderReportDTO) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: informe nulo")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(report.Title, true).
		WithAuthor("StockPilot", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(report.Rows)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + fecha (izq) y resumen (der).
func headerRow(report *dto.ReorderReportDTO) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(report.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Calculado el "+report.GeneratedOn, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("PRODUCTOS EVALUADOS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(strconv.Itoa(report.Summary.TotalProducts), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 5,
			}),
			text.New(fmt.Sprintf("Requieren reposición: %d", report.Summary.ProductsNeedingReorder), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorAlert,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de productos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 3, align.Left),
		h("Stock", 1, align.Right),
		h("Uso/día", 1, align.Right),
		h("ROP", 1, align.Right),
		h("SS", 1, align.Right),
		h("Días", 1, align.Right),
		h("Reponer", 1, align.Center),
		h("Vence", 1, align.Center),
		h("Valor stock", 2, align.Right),
	)
}

// tableDetailRows: una fila por producto; los que requieren reposición van en rojo.
func tableDetailRows(rows []dto.ReorderReportRowDTO) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		var c *props.Color
		flag := "no"
		if r.ReorderNeeded {
			c, flag = colorAlert, "SÍ"
		}
		expiry := r.NextExpiry
		if expiry == "" {
			expiry = "-"
		}
		cell := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1, Color: c}))
		}
		result = append(result, row.New(7).Add(
			cell(r.ProductName, 3, align.Left),
			cell(strconv.FormatInt(r.CurrentInventory, 10), 1, align.Right),
			cell(strconv.FormatFloat(r.AvgDailyUsage, 'f', 2, 64), 1, align.Right),
			cell(strconv.FormatInt(r.ReorderPoint, 10), 1, align.Right),
			cell(strconv.FormatInt(r.SafetyStock, 10), 1, align.Right),
			cell(strconv.FormatFloat(r.DaysUntilReorder, 'f', 1, 64), 1, align.Right),
			cell(flag, 1, align.Center),
			cell(expiry, 1, align.Center),
			cell("$"+formatMoney(r.StockValue.StringFixed(0)), 2, align.Right),
		))
	}
	return result
}

// footerRow: política usada y productos que no pudieron calcularse.
func footerRow(report *dto.ReorderReportDTO) core.Row {
	lead := 0
	if len(report.Rows) > 0 {
		lead = report.Rows[0].LeadTimeDays
	}
	note := fmt.Sprintf("ROP = uso diario promedio × %d días de entrega + stock de seguridad.", lead)
	if report.Skipped > 0 {
		note += fmt.Sprintf(" %d producto(s) omitidos por falta de pronóstico.", report.Skipped)
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(note, props.Text{Size: 7, Color: colorGray, Top: 2}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "-1000000" → "-1.000.000"
func formatMoney(s string) string {
	sign := ""
	if len(s) > 0 && s[0] == '-' {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
