package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/alejandrodnm/forecastbot/internal/domain"
	"github.com/alejandrodnm/forecastbot/internal/ports"
	"github.com/alejandrodnm/forecastbot/internal/trace"
)

// Config contiene la configuración de la evaluación.
type Config struct {
	Instruments []string // vacío = todos los de la tabla
	Horizon     int
	Workers     int    // goroutines para evaluación paralela (0 = NumCPU*2)
	Symbol      string // nombre del artefacto final_<Symbol>_analysis.json
}

// Service orquesta load → evaluate → rise → combine → notify → persist.
type Service struct {
	cfg       Config
	source    ports.SeriesSource
	storage   ports.Storage
	notifier  ports.Notifier
	artifacts ports.Artifacts
	newID     func() string
	now       func() time.Time
}

// New crea el servicio. storage, notifier y artifacts pueden ser nil.
func New(
	cfg Config,
	source ports.SeriesSource,
	storage ports.Storage,
	notifier ports.Notifier,
	artifacts ports.Artifacts,
) *Service {
	return &Service{
		cfg:       cfg,
		source:    source,
		storage:   storage,
		notifier:  notifier,
		artifacts: artifacts,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// RunOnce evalúa la tabla y devuelve la corrida sin efectos secundarios.
// Un input corrupto o un horizonte negativo aborta; los fallos por
// instrumento quedan en run.Skipped.
func (s *Service) RunOnce(ctx context.Context) (run domain.EvaluationRun, err error) {
	ctx, span := trace.StartSpan(ctx, "evaluation.RunOnce")
	defer func() { trace.End(span, err) }()

	if s.cfg.Horizon < 0 {
		return domain.EvaluationRun{}, fmt.Errorf("evaluation.RunOnce: horizon %d: %w", s.cfg.Horizon, domain.ErrInvalidHorizon)
	}

	run = domain.EvaluationRun{
		ID:        s.newID(),
		StartedAt: s.now().UTC(),
		Horizon:   s.cfg.Horizon,
	}

	table, err := s.source.LoadTable(ctx)
	if err != nil {
		return domain.EvaluationRun{}, fmt.Errorf("evaluation.RunOnce: load table: %w", err)
	}

	instruments := s.cfg.Instruments
	if len(instruments) == 0 {
		instruments = table.Instruments()
	}

	reports, calls, skipped := evaluateConcurrent(ctx, table, instruments, s.cfg.Horizon, s.cfg.Workers)
	if err := ctx.Err(); err != nil {
		return domain.EvaluationRun{}, fmt.Errorf("evaluation.RunOnce: %w", err)
	}

	run.Results = domain.Combine(reports, calls)
	run.Skipped = skipped
	run.CompletedAt = s.now().UTC()

	span.SetAttributes(
		attribute.Int("instruments", len(instruments)),
		attribute.Int("results", len(run.Results)),
		attribute.Int("skipped", len(run.Skipped)),
	)
	return run, nil
}

// Run ejecuta RunOnce, notifica, persiste y escribe el artefacto de análisis.
// Devuelve la corrida y la ruta del artefacto. Los errores de notifier y
// storage solo se registran; no poder escribir el artefacto sí es un error.
func (s *Service) Run(ctx context.Context) (domain.EvaluationRun, string, error) {
	start := time.Now()

	run, err := s.RunOnce(ctx)
	if err != nil {
		return domain.EvaluationRun{}, "", err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, run); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	if s.storage != nil {
		if err := s.storage.SaveRun(ctx, run); err != nil {
			slog.Warn("storage error", "run_id", run.ID, "err", err)
		}
	}

	var path string
	if s.artifacts != nil {
		path, err = s.artifacts.WriteAnalysis(s.cfg.Symbol, run.Results)
		if err != nil {
			return run, "", fmt.Errorf("evaluation.Run: %w", err)
		}
	}

	attrs := []any{
		"run_id", run.ID,
		"results", len(run.Results),
		"skipped", len(run.Skipped),
		"duration", time.Since(start).Round(time.Millisecond),
	}
	if top, ok := run.Top(); ok && top.RiseProbability.Valid {
		attrs = append(attrs, "top", top.Instrument, "rise_prob", fmt.Sprintf("%+.2f%%", top.RiseProbability.Float64))
	}
	if path != "" {
		attrs = append(attrs, "artifact", path)
	}
	slog.Info("evaluation complete", attrs...)
	return run, path, nil
}
