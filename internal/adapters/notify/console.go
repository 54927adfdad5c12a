package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

const missing = "-"

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador sobre un writer arbitrario (tests).
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime la corrida en el modo configurado.
func (c *Console) Notify(_ context.Context, run domain.EvaluationRun) error {
	if len(run.Results) == 0 {
		fmt.Fprintf(c.out, "[%s] no results (horizon=%d, skipped=%d)\n",
			clock(run.CompletedAt), run.Horizon, len(run.Skipped))
		c.printSkipped(run.Skipped)
		return nil
	}

	if c.table {
		c.printFull(run)
	} else {
		c.printCompact(run)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(run domain.EvaluationRun) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d stocks h=%d skipped:%d",
		clock(run.CompletedAt), len(run.Results), run.Horizon, len(run.Skipped))

	for i, r := range run.Results {
		if i >= 4 {
			break
		}
		fmt.Fprintf(&sb, " | %s %s %s%%", r.Instrument, riseLabel(r.PredictedRise), fmtFloat(r.RiseProbability, "%+.2f"))
	}
	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla de métricas y rise call.
func (c *Console) printFull(run domain.EvaluationRun) {
	fmt.Fprintf(c.out, "\n[%s] %d stocks, horizon %d days, %d skipped\n",
		clock(run.CompletedAt), len(run.Results), run.Horizon, len(run.Skipped))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Stock", "MAE", "RMSE", "MAPE %", "Acc %", "Last", "Predicted", "Rise", "Prob %")

	for i, r := range run.Results {
		table.Append(
			fmt.Sprintf("%d", i+1),
			r.Instrument,
			fmtFloat(r.MAE, "%.4f"),
			fmtFloat(r.RMSE, "%.4f"),
			fmtFloat(r.MAPE, "%.2f"),
			fmtFloat(r.Accuracy, "%.2f"),
			fmtFloat(r.LastActual, "%.2f"),
			fmtFloat(r.PredictedFuture, "%.2f"),
			riseLabel(r.PredictedRise),
			fmtFloat(r.RiseProbability, "%+.2f"),
		)
	}
	table.Render()

	fmt.Fprintln(c.out, "  Acc % = 100 - MAPE | Prob % = cambio % predicho sobre el último cierre")
	c.printSkipped(run.Skipped)
}

func (c *Console) printSkipped(skipped []domain.SkippedInstrument) {
	for _, s := range skipped {
		fmt.Fprintf(c.out, "  skipped %s (%s): %s\n", s.Instrument, s.Stage, s.Reason)
	}
}

// PrintRecommendation imprime el razonamiento y la respuesta del LLM.
func (c *Console) PrintRecommendation(rec domain.Recommendation) {
	fmt.Fprintf(c.out, "\n=== %s recommendation (%s) ===\n", rec.Symbol, rec.Model)
	if rec.Reasoning != "" {
		fmt.Fprintln(c.out, "\n--- reasoning ---")
		fmt.Fprintln(c.out, strings.TrimSpace(rec.Reasoning))
	}
	fmt.Fprintln(c.out, "\n--- answer ---")
	fmt.Fprintln(c.out, strings.TrimSpace(rec.Content))
}

// PrintHistory imprime una fila por corrida guardada.
func (c *Console) PrintHistory(runs []domain.EvaluationRun) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "no runs in range")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Run", "Started", "Horizon", "Stocks", "Skipped", "Top", "Prob %")
	for _, run := range runs {
		top, prob := missing, missing
		if r, ok := run.Top(); ok {
			top = r.Instrument
			prob = fmtFloat(r.RiseProbability, "%+.2f")
		}
		table.Append(
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", run.Horizon),
			fmt.Sprintf("%d", len(run.Results)),
			fmt.Sprintf("%d", len(run.Skipped)),
			top,
			prob,
		)
	}
	table.Render()
}

// PrintNews imprime los titulares en formato tabla.
func (c *Console) PrintNews(symbol string, items []domain.NewsItem) {
	fmt.Fprintf(c.out, "\n%s: %d news items\n", symbol, len(items))
	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "Source", "Title")
	for _, it := range items {
		table.Append(it.Date, it.Source, truncate(it.Title, 70))
	}
	table.Render()
}

// PrintMovingAverage imprime el snapshot de medias móviles.
func (c *Console) PrintMovingAverage(s domain.MovingAverageSnapshot) {
	fmt.Fprintf(c.out, "%s %s close=%.2f MA_5=%.2f MA_20=%.2f\n",
		s.Stock, s.Date, s.RecentClosePrice, s.MA5, s.MA20)
}

// --- helpers ---

func fmtFloat(v null.Float, format string) string {
	if !v.Valid {
		return missing
	}
	return fmt.Sprintf(format, v.Float64)
}

func riseLabel(v null.Bool) string {
	switch {
	case !v.Valid:
		return missing
	case v.Bool:
		return "UP"
	default:
		return "DOWN"
	}
}

func clock(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Local().Format("15:04:05")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
