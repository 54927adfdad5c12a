package domain

import (
	"fmt"
	"math"
	"sort"

	"github.com/guregu/null/v6"
)

// AccuracyReport son las métricas de error de un instrumento sobre los pares
// alineados (predicted[i], actual[i+horizon]). Solo existe si Pairs > 0.
type AccuracyReport struct {
	Instrument string
	Pairs      int
	MAE        float64
	MSE        float64
	RMSE       float64
	MAPE       float64 // %
	Accuracy   float64 // 100 - MAPE, puede ser negativo
}

// Evaluate alinea cada predicción hecha en t con el actual en t+horizon y
// calcula MAE, MSE, RMSE, MAPE y Accuracy sobre los pares completos.
//
//	e        = predicted - actual
//	MAE      = mean(|e|)
//	MSE      = mean(e²)
//	RMSE     = √MSE
//	MAPE     = mean(|e / actual|) × 100
//	Accuracy = 100 - MAPE (sin clamp)
//
// Devuelve ErrInsufficientData si no queda ningún par y ErrDivisionByZero si
// algún actual usado vale 0. Es una función pura.
func Evaluate(series InstrumentSeries, horizon int) (AccuracyReport, error) {
	if horizon < 0 {
		return AccuracyReport{}, fmt.Errorf("domain.Evaluate: %s horizon=%d: %w",
			series.Instrument, horizon, ErrInvalidHorizon)
	}

	var (
		n                     int
		sumAbs, sumSq, sumPct float64
	)
	rows := series.Rows
	for i := 0; i+horizon < len(rows); i++ {
		predicted := rows[i].Predicted
		actual := rows[i+horizon].Actual
		if !predicted.Valid || !actual.Valid {
			continue
		}
		if actual.Float64 == 0 {
			return AccuracyReport{}, fmt.Errorf("domain.Evaluate: %s actual=0 at %s: %w",
				series.Instrument, rows[i+horizon].Date.Format("2006-01-02"), ErrDivisionByZero)
		}

		e := predicted.Float64 - actual.Float64
		sumAbs += math.Abs(e)
		sumSq += e * e
		sumPct += math.Abs(e / actual.Float64)
		n++
	}

	if n == 0 {
		return AccuracyReport{}, fmt.Errorf("domain.Evaluate: %s rows=%d horizon=%d: %w",
			series.Instrument, len(rows), horizon, ErrInsufficientData)
	}

	count := float64(n)
	mae := sumAbs / count
	mse := sumSq / count
	mape := sumPct / count * 100
	for _, v := range []float64{mae, mse, mape} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return AccuracyReport{}, fmt.Errorf("domain.Evaluate: %s mae=%g mse=%g mape=%g: %w",
				series.Instrument, mae, mse, mape, ErrNonFinite)
		}
	}
	return AccuracyReport{
		Instrument: series.Instrument,
		Pairs:      n,
		MAE:        mae,
		MSE:        mse,
		RMSE:       math.Sqrt(mse),
		MAPE:       mape,
		Accuracy:   100 - mape,
	}, nil
}

// RiseCall es la llamada direccional derivada de la última fila de la serie.
// PredictedRise y RiseProbability son null cuando no se pueden calcular:
// "no sube" y "desconocido" nunca se confunden.
type RiseCall struct {
	Instrument      string
	LastActual      null.Float
	PredictedFuture null.Float
	PredictedRise   null.Bool
	// RiseProbability es el cambio porcentual con signo del precio predicho
	// respecto al último actual, no una probabilidad estadística.
	RiseProbability null.Float
}

// AnalyzeRise mira solo la fila más reciente:
//
//	rise        = predicted > actual
//	probability = (predicted - actual) / actual × 100
//
// Si falta algún valor, rise y probability quedan null. Si actual vale 0
// devuelve ErrDivisionByZero junto con la llamada parcial (precios cargados,
// dirección null), que sigue siendo reportable. Lo mismo con ErrNonFinite si
// la probabilidad desborda.
func AnalyzeRise(series InstrumentSeries) (RiseCall, error) {
	call := RiseCall{Instrument: series.Instrument}

	last, ok := series.Last()
	if !ok {
		return call, nil
	}

	call.LastActual = last.Actual
	call.PredictedFuture = last.Predicted
	if !last.Actual.Valid || !last.Predicted.Valid {
		return call, nil
	}

	actual, predicted := last.Actual.Float64, last.Predicted.Float64
	if actual == 0 {
		return call, fmt.Errorf("domain.AnalyzeRise: %s last actual=0: %w",
			series.Instrument, ErrDivisionByZero)
	}

	prob := (predicted - actual) / actual * 100
	if math.IsInf(prob, 0) {
		return call, fmt.Errorf("domain.AnalyzeRise: %s actual=%g predicted=%g: %w",
			series.Instrument, actual, predicted, ErrNonFinite)
	}

	call.PredictedRise = null.BoolFrom(predicted > actual)
	call.RiseProbability = null.FloatFrom(prob)
	return call, nil
}

// CombinedResult es la fila del artefacto final: outer join de AccuracyReport
// y RiseCall por instrumento. Los campos sin calcular serializan como null.
type CombinedResult struct {
	Instrument      string     `json:"Stock"`
	MAE             null.Float `json:"MAE"`
	MSE             null.Float `json:"MSE"`
	RMSE            null.Float `json:"RMSE"`
	MAPE            null.Float `json:"MAPE (%)"`
	Accuracy        null.Float `json:"Accuracy (%)"`
	LastActual      null.Float `json:"Last Actual Price"`
	PredictedFuture null.Float `json:"Predicted Future Price"`
	PredictedRise   null.Bool  `json:"Predicted Rise"`
	RiseProbability null.Float `json:"Rise Probability (%)"`
}

// HasReport indica si la fila trae métricas de precisión.
func (r CombinedResult) HasReport() bool {
	return r.MAE.Valid
}

// Combine hace el outer join por instrumento y ordena por RiseProbability desc.
// Las filas con probabilidad null van al final; empates y nulls se ordenan por
// instrumento ascendente. len(resultado) == |instrumentos en reports ∪ calls|.
func Combine(reports []AccuracyReport, calls []RiseCall) []CombinedResult {
	byInstrument := make(map[string]*CombinedResult, len(reports)+len(calls))
	row := func(instrument string) *CombinedResult {
		r, ok := byInstrument[instrument]
		if !ok {
			r = &CombinedResult{Instrument: instrument}
			byInstrument[instrument] = r
		}
		return r
	}

	for _, rep := range reports {
		r := row(rep.Instrument)
		r.MAE = null.FloatFrom(rep.MAE)
		r.MSE = null.FloatFrom(rep.MSE)
		r.RMSE = null.FloatFrom(rep.RMSE)
		r.MAPE = null.FloatFrom(rep.MAPE)
		r.Accuracy = null.FloatFrom(rep.Accuracy)
	}
	for _, call := range calls {
		r := row(call.Instrument)
		r.LastActual = call.LastActual
		r.PredictedFuture = call.PredictedFuture
		r.PredictedRise = call.PredictedRise
		r.RiseProbability = call.RiseProbability
	}

	results := make([]CombinedResult, 0, len(byInstrument))
	for _, r := range byInstrument {
		results = append(results, *r)
	}
	sort.Slice(results, func(i, j int) bool {
		return lessByRise(results[i], results[j])
	})
	return results
}

func lessByRise(a, b CombinedResult) bool {
	pa, pb := a.RiseProbability, b.RiseProbability
	switch {
	case pa.Valid && !pb.Valid:
		return true
	case !pa.Valid && pb.Valid:
		return false
	case pa.Valid && pb.Valid && pa.Float64 != pb.Float64:
		return pa.Float64 > pb.Float64
	}
	return a.Instrument < b.Instrument
}
