package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/alejandrodnm/forecastbot/internal/domain"
	"github.com/alejandrodnm/forecastbot/internal/ports"
	"github.com/alejandrodnm/forecastbot/internal/trace"
)

const (
	DefaultLookbackDays = 60
	DefaultNewsLimit    = 20
)

// ErrEmptyAnalysis: el artefacto de análisis existe pero no tiene filas.
var ErrEmptyAnalysis = errors.New("analysis has no rows")

// Config del pipeline de un símbolo.
type Config struct {
	Symbol       string
	LookbackDays int
	NewsLimit    int
}

// Evaluator es la parte del servicio de evaluación que usa el pipeline.
type Evaluator interface {
	Run(ctx context.Context) (domain.EvaluationRun, string, error)
}

// Pipeline encadena los pasos de un símbolo. Cada paso lee y escribe
// artefactos, así que también pueden correr por separado.
type Pipeline struct {
	cfg         Config
	prices      ports.PriceProvider
	company     ports.CompanyProvider
	news        ports.NewsProvider
	evaluator   Evaluator
	recommender ports.Recommender
	artifacts   ports.Artifacts
	now         func() time.Time
}

// New crea el pipeline. Los pasos cuyo provider sea nil fallan al ejecutarse.
func New(
	cfg Config,
	prices ports.PriceProvider,
	company ports.CompanyProvider,
	news ports.NewsProvider,
	evaluator Evaluator,
	recommender ports.Recommender,
	artifacts ports.Artifacts,
) *Pipeline {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = DefaultLookbackDays
	}
	if cfg.NewsLimit <= 0 {
		cfg.NewsLimit = DefaultNewsLimit
	}
	return &Pipeline{
		cfg:         cfg,
		prices:      prices,
		company:     company,
		news:        news,
		evaluator:   evaluator,
		recommender: recommender,
		artifacts:   artifacts,
		now:         time.Now,
	}
}

// MovingAverage descarga los cierres de los últimos LookbackDays hasta el día
// hábil anterior y escribe MA_5 / MA_20 de la última barra.
func (p *Pipeline) MovingAverage(ctx context.Context) (snap domain.MovingAverageSnapshot, err error) {
	ctx, span := p.span(ctx, "pipeline.MovingAverage")
	defer func() { trace.End(span, err) }()

	if p.prices == nil {
		return snap, fmt.Errorf("pipeline.MovingAverage: no price provider configured")
	}

	asOf := domain.PreviousTradingDay(p.now())
	from := asOf.AddDate(0, 0, -p.cfg.LookbackDays)

	bars, err := p.prices.FetchDailyBars(ctx, p.cfg.Symbol, from, asOf)
	if err != nil {
		return snap, fmt.Errorf("pipeline.MovingAverage: fetch bars: %w", err)
	}

	snap, err = domain.MovingAverages(p.cfg.Symbol, bars, asOf)
	if err != nil {
		return snap, fmt.Errorf("pipeline.MovingAverage: %w", err)
	}

	path, err := p.artifacts.WriteMovingAverage(snap)
	if err != nil {
		return snap, fmt.Errorf("pipeline.MovingAverage: %w", err)
	}
	slog.Info("moving averages written",
		"symbol", snap.Stock,
		"close", snap.RecentClosePrice,
		"ma5", fmt.Sprintf("%.2f", snap.MA5),
		"ma20", fmt.Sprintf("%.2f", snap.MA20),
		"bars", len(bars),
		"path", path,
	)
	return snap, nil
}

// CompanyInfo descarga los fundamentales y escribe <SYMBOL>_info.json.
func (p *Pipeline) CompanyInfo(ctx context.Context) (info domain.CompanyInfo, err error) {
	ctx, span := p.span(ctx, "pipeline.CompanyInfo")
	defer func() { trace.End(span, err) }()

	if p.company == nil {
		return info, fmt.Errorf("pipeline.CompanyInfo: no company provider configured")
	}

	info, err = p.company.FetchCompanyInfo(ctx, p.cfg.Symbol)
	if err != nil {
		return info, fmt.Errorf("pipeline.CompanyInfo: %w", err)
	}
	if info.Symbol == "" {
		info.Symbol = p.cfg.Symbol
	}

	path, err := p.artifacts.WriteCompanyInfo(info)
	if err != nil {
		return info, fmt.Errorf("pipeline.CompanyInfo: %w", err)
	}
	slog.Info("company info written", "symbol", info.Symbol, "name", info.Name.String, "path", path)
	return info, nil
}

// News descarga los titulares más recientes y escribe <SYMBOL>_news.json y news.csv.
func (p *Pipeline) News(ctx context.Context) (items []domain.NewsItem, err error) {
	ctx, span := p.span(ctx, "pipeline.News")
	defer func() { trace.End(span, err) }()

	if p.news == nil {
		return nil, fmt.Errorf("pipeline.News: no news provider configured")
	}

	items, err = p.news.FetchNews(ctx, p.cfg.Symbol, p.cfg.NewsLimit)
	if err != nil {
		return nil, fmt.Errorf("pipeline.News: %w", err)
	}
	if len(items) > p.cfg.NewsLimit {
		items = items[:p.cfg.NewsLimit]
	}

	path, err := p.artifacts.WriteNews(p.cfg.Symbol, items)
	if err != nil {
		return nil, fmt.Errorf("pipeline.News: %w", err)
	}
	if len(items) == 0 {
		slog.Warn("no news found", "symbol", p.cfg.Symbol)
	}
	slog.Info("news written", "symbol", p.cfg.Symbol, "items", len(items), "path", path)
	return items, nil
}

// Evaluate corre el servicio de evaluación (que escribe su propio artefacto).
func (p *Pipeline) Evaluate(ctx context.Context) (run domain.EvaluationRun, err error) {
	ctx, span := p.span(ctx, "pipeline.Evaluate")
	defer func() { trace.End(span, err) }()

	if p.evaluator == nil {
		return run, fmt.Errorf("pipeline.Evaluate: no evaluator configured")
	}
	run, _, err = p.evaluator.Run(ctx)
	if err != nil {
		return run, fmt.Errorf("pipeline.Evaluate: %w", err)
	}
	return run, nil
}

// Recommend lee los artefactos y pide la recomendación al LLM usando la primera
// fila del análisis (la de mayor rise probability). Con el análisis vacío
// devuelve ErrEmptyAnalysis sin llamar al LLM.
func (p *Pipeline) Recommend(ctx context.Context) (rec domain.Recommendation, err error) {
	ctx, span := p.span(ctx, "pipeline.Recommend")
	defer func() { trace.End(span, err) }()

	if p.recommender == nil {
		return rec, fmt.Errorf("pipeline.Recommend: no recommender configured")
	}

	analysis, err := p.artifacts.ReadAnalysis(p.cfg.Symbol)
	if err != nil {
		return rec, fmt.Errorf("pipeline.Recommend: %w", err)
	}
	if len(analysis) == 0 {
		return rec, fmt.Errorf("pipeline.Recommend: %s: %w", p.cfg.Symbol, ErrEmptyAnalysis)
	}

	news, err := p.artifacts.ReadNews(p.cfg.Symbol)
	if err != nil {
		return rec, fmt.Errorf("pipeline.Recommend: %w", err)
	}
	company, err := p.artifacts.ReadCompanyInfo(p.cfg.Symbol)
	if err != nil {
		return rec, fmt.Errorf("pipeline.Recommend: %w", err)
	}
	prices, err := p.artifacts.ReadMovingAverage(p.cfg.Symbol)
	if err != nil {
		return rec, fmt.Errorf("pipeline.Recommend: %w", err)
	}

	rec, err = p.recommender.Recommend(ctx, domain.RecommendationInput{
		Symbol:   p.cfg.Symbol,
		Analysis: analysis[0],
		News:     news,
		Company:  company,
		Prices:   prices,
	})
	if err != nil {
		return rec, fmt.Errorf("pipeline.Recommend: %w", err)
	}

	path, err := p.artifacts.WriteRecommendation(rec)
	if err != nil {
		return rec, fmt.Errorf("pipeline.Recommend: %w", err)
	}
	slog.Info("recommendation written", "symbol", rec.Symbol, "model", rec.Model, "path", path)
	return rec, nil
}

// RunAll ejecuta los pasos en orden y se detiene en el primer error.
func (p *Pipeline) RunAll(ctx context.Context) (rec domain.Recommendation, err error) {
	ctx, span := p.span(ctx, "pipeline.RunAll")
	defer func() { trace.End(span, err) }()

	start := time.Now()
	if _, err = p.MovingAverage(ctx); err != nil {
		return rec, err
	}
	if _, err = p.CompanyInfo(ctx); err != nil {
		return rec, err
	}
	if _, err = p.News(ctx); err != nil {
		return rec, err
	}
	if _, err = p.Evaluate(ctx); err != nil {
		return rec, err
	}
	if rec, err = p.Recommend(ctx); err != nil {
		return rec, err
	}
	slog.Info("pipeline complete", "symbol", p.cfg.Symbol, "duration", time.Since(start).Round(time.Millisecond))
	return rec, nil
}

func (p *Pipeline) span(ctx context.Context, name string) (context.Context, oteltrace.Span) {
	ctx, span := trace.StartSpan(ctx, name)
	span.SetAttributes(attribute.String("symbol", p.cfg.Symbol))
	return ctx, span
}
