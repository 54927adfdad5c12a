package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// mkSeries construye una serie con pares (actual, predicted); NaN = missing.
func mkSeries(t *testing.T, name string, pairs ...[2]float64) InstrumentSeries {
	t.Helper()
	rows := make([]TimeSeriesRow, len(pairs))
	for i, p := range pairs {
		rows[i] = TimeSeriesRow{
			Date:      day0.AddDate(0, 0, i),
			Actual:    nanToNull(p[0]),
			Predicted: nanToNull(p[1]),
		}
	}
	s, err := NewInstrumentSeries(name, rows)
	require.NoError(t, err)
	return s
}

func nanToNull(v float64) null.Float {
	if math.IsNaN(v) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

var nan = math.NaN()

// --- Evaluate ---

func TestEvaluate_HorizonOneScenario(t *testing.T) {
	s := mkSeries(t, "GOOGL", [2]float64{100, 95}, [2]float64{102, 110})

	rep, err := Evaluate(s, 1)
	require.NoError(t, err)

	// único par: predicted[0]=95 vs actual[1]=102 → e = -7
	assert.Equal(t, 1, rep.Pairs)
	assert.InDelta(t, 7.0, rep.MAE, 1e-9)
	assert.InDelta(t, 49.0, rep.MSE, 1e-9)
	assert.InDelta(t, 7.0, rep.RMSE, 1e-9)
	assert.InDelta(t, 6.8627, rep.MAPE, 1e-3)
	assert.InDelta(t, 93.1373, rep.Accuracy, 1e-3)
}

func TestEvaluate_ZeroHorizonComparesSameRow(t *testing.T) {
	s := mkSeries(t, "X", [2]float64{100, 110}, [2]float64{200, 180})

	rep, err := Evaluate(s, 0)
	require.NoError(t, err)

	// e = +10, -20
	assert.Equal(t, 2, rep.Pairs)
	assert.InDelta(t, 15.0, rep.MAE, 1e-9)
	assert.InDelta(t, 250.0, rep.MSE, 1e-9)
	assert.InDelta(t, 10.0, rep.MAPE, 1e-9) // (10% + 10%) / 2
}

func TestEvaluate_SkipsPairsWithMissingValues(t *testing.T) {
	s := mkSeries(t, "X",
		[2]float64{100, 101},
		[2]float64{nan, 99},
		[2]float64{104, nan},
		[2]float64{105, 106},
	)

	rep, err := Evaluate(s, 1)
	require.NoError(t, err)

	// pares: (101, NaN) ✗, (99, 104) ✓, (NaN, 105) ✗
	assert.Equal(t, 1, rep.Pairs)
	assert.InDelta(t, 5.0, rep.MAE, 1e-9)
}

func TestEvaluate_FewerRowsThanHorizonIsSkipped(t *testing.T) {
	for rows := 0; rows <= 7; rows++ {
		pairs := make([][2]float64, rows)
		for i := range pairs {
			pairs[i] = [2]float64{100 + float64(i), 101 + float64(i)}
		}
		s := mkSeries(t, "X", pairs...)

		_, err := Evaluate(s, 7)
		assert.ErrorIs(t, err, ErrInsufficientData, "rows=%d", rows)
	}
}

func TestEvaluate_AllPairsMissing(t *testing.T) {
	s := mkSeries(t, "X", [2]float64{nan, 1}, [2]float64{2, nan})
	_, err := Evaluate(s, 1)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestEvaluate_ZeroActualIsDivisionByZero(t *testing.T) {
	s := mkSeries(t, "X", [2]float64{100, 95}, [2]float64{0, 110})
	_, err := Evaluate(s, 1)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestEvaluate_OverflowIsNonFinite(t *testing.T) {
	// finitos, pero e² desborda a +Inf
	s := mkSeries(t, "X", [2]float64{1, 1e200}, [2]float64{1, 1e200})
	_, err := Evaluate(s, 0)
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestEvaluate_NegativeHorizon(t *testing.T) {
	s := mkSeries(t, "X", [2]float64{100, 95})
	_, err := Evaluate(s, -1)
	assert.ErrorIs(t, err, ErrInvalidHorizon)
}

func TestEvaluate_AccuracyCanBeNegative(t *testing.T) {
	// predicted = 3× actual → MAPE = 200%
	s := mkSeries(t, "X", [2]float64{10, 30}, [2]float64{20, 60})

	rep, err := Evaluate(s, 0)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, rep.MAPE, 1e-9)
	assert.InDelta(t, -100.0, rep.Accuracy, 1e-9)
}

func TestEvaluate_Invariants(t *testing.T) {
	s := mkSeries(t, "X",
		[2]float64{100, 98}, [2]float64{101, 103}, [2]float64{99, 97},
		[2]float64{102, 105}, [2]float64{104, 100}, [2]float64{103, 108},
	)
	for h := 0; h < 4; h++ {
		rep, err := Evaluate(s, h)
		require.NoError(t, err)
		assert.Equal(t, 100-rep.MAPE, rep.Accuracy, "h=%d", h)
		assert.InDelta(t, rep.MSE, rep.RMSE*rep.RMSE, 1e-9, "h=%d", h)
		assert.Equal(t, s.Len()-h, rep.Pairs)
	}
}

// --- AnalyzeRise ---

func TestAnalyzeRise_Rise(t *testing.T) {
	s := mkSeries(t, "X", [2]float64{140, 150}, [2]float64{150, 165})

	call, err := AnalyzeRise(s)
	require.NoError(t, err)
	assert.Equal(t, null.FloatFrom(150), call.LastActual)
	assert.Equal(t, null.FloatFrom(165), call.PredictedFuture)
	assert.Equal(t, null.BoolFrom(true), call.PredictedRise)
	assert.InDelta(t, 10.0, call.RiseProbability.Float64, 1e-9)
}

func TestAnalyzeRise_Fall(t *testing.T) {
	s := mkSeries(t, "X", [2]float64{200, 190})

	call, err := AnalyzeRise(s)
	require.NoError(t, err)
	assert.False(t, call.PredictedRise.Bool)
	assert.True(t, call.PredictedRise.Valid)
	assert.InDelta(t, -5.0, call.RiseProbability.Float64, 1e-9)
}

func TestAnalyzeRise_EqualPricesIsZeroAndNoRise(t *testing.T) {
	s := mkSeries(t, "X", [2]float64{123.45, 123.45})

	call, err := AnalyzeRise(s)
	require.NoError(t, err)
	assert.Equal(t, null.BoolFrom(false), call.PredictedRise)
	assert.Equal(t, null.FloatFrom(0), call.RiseProbability)
}

func TestAnalyzeRise_MissingValueIsUndefined(t *testing.T) {
	s := mkSeries(t, "X", [2]float64{100, 105}, [2]float64{nan, 110})

	call, err := AnalyzeRise(s)
	require.NoError(t, err)
	assert.False(t, call.LastActual.Valid)
	assert.Equal(t, null.FloatFrom(110), call.PredictedFuture)
	assert.False(t, call.PredictedRise.Valid)
	assert.False(t, call.RiseProbability.Valid)
}

func TestAnalyzeRise_ZeroActualIsDivisionByZero(t *testing.T) {
	s := mkSeries(t, "X", [2]float64{0, 10})

	call, err := AnalyzeRise(s)
	require.ErrorIs(t, err, ErrDivisionByZero)
	assert.Equal(t, null.FloatFrom(0), call.LastActual)
	assert.False(t, call.RiseProbability.Valid)
}

func TestAnalyzeRise_OverflowKeepsPartialCall(t *testing.T) {
	s := mkSeries(t, "X", [2]float64{1e-300, 1e300})

	call, err := AnalyzeRise(s)
	require.ErrorIs(t, err, ErrNonFinite)
	assert.True(t, call.LastActual.Valid)
	assert.False(t, call.PredictedRise.Valid)
	assert.False(t, call.RiseProbability.Valid)
}

func TestAnalyzeRise_EmptySeries(t *testing.T) {
	call, err := AnalyzeRise(InstrumentSeries{Instrument: "X"})
	require.NoError(t, err)
	assert.Equal(t, "X", call.Instrument)
	assert.False(t, call.LastActual.Valid)
	assert.False(t, call.RiseProbability.Valid)
}

// --- Combine ---

func TestCombine_OuterJoin(t *testing.T) {
	reports := []AccuracyReport{{Instrument: "A", MAE: 1, MSE: 1, RMSE: 1, MAPE: 2, Accuracy: 98}}
	calls := []RiseCall{{Instrument: "B", PredictedRise: null.BoolFrom(true), RiseProbability: null.FloatFrom(3)}}

	out := Combine(reports, calls)
	require.Len(t, out, 2)

	assert.Equal(t, "B", out[0].Instrument)
	assert.False(t, out[0].MAE.Valid)
	assert.False(t, out[0].HasReport())

	assert.Equal(t, "A", out[1].Instrument)
	assert.Equal(t, null.FloatFrom(98), out[1].Accuracy)
	assert.False(t, out[1].RiseProbability.Valid)
	assert.False(t, out[1].PredictedRise.Valid)
}

func TestCombine_LengthIsUnion(t *testing.T) {
	reports := []AccuracyReport{{Instrument: "A"}, {Instrument: "B"}, {Instrument: "C"}}
	calls := []RiseCall{{Instrument: "B"}, {Instrument: "C"}, {Instrument: "D"}, {Instrument: "E"}}
	assert.Len(t, Combine(reports, calls), 5)
	assert.Empty(t, Combine(nil, nil))
}

func TestCombine_SortOrder(t *testing.T) {
	calls := []RiseCall{
		{Instrument: "nil-b"},
		{Instrument: "low", RiseProbability: null.FloatFrom(-4)},
		{Instrument: "tie-b", RiseProbability: null.FloatFrom(2)},
		{Instrument: "nil-a"},
		{Instrument: "high", RiseProbability: null.FloatFrom(9.5)},
		{Instrument: "tie-a", RiseProbability: null.FloatFrom(2)},
	}

	out := Combine(nil, calls)

	got := make([]string, len(out))
	for i, r := range out {
		got[i] = r.Instrument
	}
	assert.Equal(t, []string{"high", "tie-a", "tie-b", "low", "nil-a", "nil-b"}, got)
}

func TestCombinedResult_JSONKeepsExplicitNulls(t *testing.T) {
	out := Combine(nil, []RiseCall{{
		Instrument:      "GOOGL",
		LastActual:      null.FloatFrom(150),
		PredictedFuture: null.FloatFrom(165),
		PredictedRise:   null.BoolFrom(true),
		RiseProbability: null.FloatFrom(10),
	}})

	b, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Len(t, decoded, 1)

	row := decoded[0]
	for _, key := range []string{"MAE", "MSE", "RMSE", "MAPE (%)", "Accuracy (%)"} {
		v, present := row[key]
		assert.True(t, present, "key %q must be present", key)
		assert.Nil(t, v, "key %q must be null", key)
	}
	assert.Equal(t, "GOOGL", row["Stock"])
	assert.Equal(t, true, row["Predicted Rise"])
	assert.InDelta(t, 10.0, row["Rise Probability (%)"], 1e-9)

	var back []CombinedResult
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, out, back)
}

// --- Series ---

func TestNewInstrumentSeries_SortsAndRejectsDuplicates(t *testing.T) {
	rows := []TimeSeriesRow{
		{Date: day0.AddDate(0, 0, 2), Actual: null.FloatFrom(3)},
		{Date: day0, Actual: null.FloatFrom(1)},
		{Date: day0.AddDate(0, 0, 1), Actual: null.FloatFrom(2), Predicted: null.FloatFrom(nan)},
	}
	s, err := NewInstrumentSeries("X", rows)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Rows[0].Actual.Float64)
	assert.False(t, s.Rows[1].Predicted.Valid, "NaN must become missing")
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 3.0, last.Actual.Float64)

	rows = append(rows, TimeSeriesRow{Date: day0})
	_, err = NewInstrumentSeries("X", rows)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestNewInstrumentSeries_InfIsMalformed(t *testing.T) {
	_, err := NewInstrumentSeries("X", []TimeSeriesRow{{Date: day0, Actual: null.FloatFrom(math.Inf(1))}})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestPredictionTable_Lookup(t *testing.T) {
	table := PredictionTable{Series: map[string]InstrumentSeries{
		"b": {Instrument: "b"},
		"a": {Instrument: "a"},
	}}
	_, err := table.Lookup("zzz")
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Equal(t, []string{"a", "b"}, table.Instruments())
}
