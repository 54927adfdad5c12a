package evaluation

// concurrent.go: worker pool para evaluar instrumentos en paralelo.
// Evaluate y AnalyzeRise son puras: los workers no comparten estado y el orden
// final lo fija domain.Combine.

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

// outcome es lo que produce un worker para un instrumento.
type outcome struct {
	report  *domain.AccuracyReport
	call    *domain.RiseCall
	skipped []domain.SkippedInstrument
}

// evaluateConcurrent corre Lookup → Evaluate → AnalyzeRise por instrumento.
// Si workers <= 0 usa runtime.NumCPU() × 2.
func evaluateConcurrent(
	ctx context.Context,
	table domain.PredictionTable,
	instruments []string,
	horizon int,
	workers int,
) ([]domain.AccuracyReport, []domain.RiseCall, []domain.SkippedInstrument) {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if workers > len(instruments) {
		workers = len(instruments)
	}

	workCh := make(chan string, len(instruments))
	resultCh := make(chan outcome, len(instruments))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range workCh {
				if ctx.Err() != nil {
					continue // drenar sin trabajar
				}
				resultCh <- evaluateOne(table, name, horizon)
			}
		}()
	}

	for _, name := range instruments {
		workCh <- name
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var (
		reports []domain.AccuracyReport
		calls   []domain.RiseCall
		skipped []domain.SkippedInstrument
	)
	for o := range resultCh {
		if o.report != nil {
			reports = append(reports, *o.report)
		}
		if o.call != nil {
			calls = append(calls, *o.call)
		}
		skipped = append(skipped, o.skipped...)
	}

	sort.Slice(skipped, func(i, j int) bool {
		if skipped[i].Instrument != skipped[j].Instrument {
			return skipped[i].Instrument < skipped[j].Instrument
		}
		return skipped[i].Stage < skipped[j].Stage
	})

	slog.Debug("concurrent evaluation complete",
		"instruments", len(instruments),
		"reports", len(reports),
		"rise_calls", len(calls),
		"skipped", len(skipped),
		"workers", workers,
	)
	return reports, calls, skipped
}

func evaluateOne(table domain.PredictionTable, name string, horizon int) outcome {
	var o outcome

	series, err := table.Lookup(name)
	if err != nil {
		o.skip(name, domain.StageLookup, err)
		return o
	}

	report, err := domain.Evaluate(series, horizon)
	if err != nil {
		o.skip(name, domain.StageEvaluate, err)
	} else {
		o.report = &report
	}

	// un fallo de la evaluación no impide la rise call (outer join)
	call, err := domain.AnalyzeRise(series)
	if err != nil {
		o.skip(name, domain.StageRise, err)
	}
	if err == nil || errors.Is(err, domain.ErrDivisionByZero) || errors.Is(err, domain.ErrNonFinite) {
		o.call = &call
	}
	return o
}

func (o *outcome) skip(name, stage string, err error) {
	slog.Warn("instrument skipped", "instrument", name, "stage", stage, "err", err)
	o.skipped = append(o.skipped, domain.SkippedInstrument{
		Instrument: name,
		Stage:      stage,
		Reason:     reason(err),
	})
}

// reason reduce el error a su clasificación (el detalle ya va en el log).
func reason(err error) string {
	for _, sentinel := range []error{
		domain.ErrMissingColumn,
		domain.ErrInsufficientData,
		domain.ErrDivisionByZero,
		domain.ErrNonFinite,
		domain.ErrInvalidHorizon,
		domain.ErrMalformedInput,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
