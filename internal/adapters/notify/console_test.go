package notify_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/forecastbot/internal/adapters/notify"
	"github.com/alejandrodnm/forecastbot/internal/domain"
)

func makeRun() domain.EvaluationRun {
	return domain.EvaluationRun{
		ID:          "3f2a9c1e-0000-4000-8000-000000000000",
		StartedAt:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		CompletedAt: time.Date(2025, 3, 10, 9, 0, 2, 0, time.UTC),
		Horizon:     7,
		Results: []domain.CombinedResult{
			{
				Instrument:      "GOOGL",
				MAE:             null.FloatFrom(7),
				RMSE:            null.FloatFrom(7),
				MAPE:            null.FloatFrom(6.86),
				Accuracy:        null.FloatFrom(93.14),
				LastActual:      null.FloatFrom(150),
				PredictedFuture: null.FloatFrom(165),
				PredictedRise:   null.BoolFrom(true),
				RiseProbability: null.FloatFrom(10),
			},
			{Instrument: "MSFT", MAE: null.FloatFrom(1.25)},
		},
		Skipped: []domain.SkippedInstrument{
			{Instrument: "AAPL", Stage: domain.StageLookup, Reason: "missing column"},
		},
	}
}

func TestConsole_Notify_Table(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, n.Notify(context.Background(), makeRun()))

	out := buf.String()
	assert.Contains(t, out, "GOOGL")
	assert.Contains(t, out, "+10.00")
	assert.Contains(t, out, "UP")
	assert.Contains(t, out, "1.2500")
	assert.Contains(t, out, "skipped AAPL (lookup): missing column")
	assert.Less(t, strings.Index(out, "GOOGL"), strings.Index(out, "MSFT"))
}

func TestConsole_Notify_Compact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, n.Notify(context.Background(), makeRun()))

	out := buf.String()
	assert.Contains(t, out, "2 stocks h=7 skipped:1")
	assert.Contains(t, out, "GOOGL UP +10.00%")
	assert.Contains(t, out, "MSFT - -%")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestConsole_Notify_EmptyRun(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	run := domain.EvaluationRun{Horizon: 7, Skipped: []domain.SkippedInstrument{
		{Instrument: "TSLA", Stage: domain.StageEvaluate, Reason: "insufficient data"},
	}}
	require.NoError(t, n.Notify(context.Background(), run))
	assert.Contains(t, buf.String(), "no results")
	assert.Contains(t, buf.String(), "skipped TSLA")
}

func TestConsole_PrintRecommendation(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	n.PrintRecommendation(domain.Recommendation{
		Symbol:    "GOOGL",
		Model:     "deepseek-reasoner",
		Reasoning: "MA_5 above MA_20.\n",
		Content:   "Rise expected. Buy.",
	})

	out := buf.String()
	assert.Contains(t, out, "GOOGL recommendation (deepseek-reasoner)")
	assert.Contains(t, out, "MA_5 above MA_20.")
	assert.Contains(t, out, "Rise expected. Buy.")
}

func TestConsole_PrintHistory(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	n.PrintHistory(nil)
	assert.Contains(t, buf.String(), "no runs in range")

	buf.Reset()
	n.PrintHistory([]domain.EvaluationRun{makeRun()})
	out := buf.String()
	assert.Contains(t, out, "3f2a9c1e")
	assert.NotContains(t, out, "3f2a9c1e-0000")
	assert.Contains(t, out, "GOOGL")
}

func TestConsole_PrintNews_LongTitleTruncated(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	n.PrintNews("GOOGL", []domain.NewsItem{{Date: "2025-03-10", Source: "Reuters", Title: strings.Repeat("A", 100)}})
	assert.Contains(t, buf.String(), "...")
	assert.Contains(t, buf.String(), "1 news items")
}
