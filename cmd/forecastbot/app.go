package main

import (
	"github.com/alejandrodnm/forecastbot/config"
	"github.com/alejandrodnm/forecastbot/internal/adapters/llm"
	"github.com/alejandrodnm/forecastbot/internal/adapters/news"
	"github.com/alejandrodnm/forecastbot/internal/adapters/notify"
	"github.com/alejandrodnm/forecastbot/internal/adapters/predictions"
	"github.com/alejandrodnm/forecastbot/internal/adapters/report"
	"github.com/alejandrodnm/forecastbot/internal/adapters/storage"
	"github.com/alejandrodnm/forecastbot/internal/adapters/twelvedata"
	"github.com/alejandrodnm/forecastbot/internal/application/evaluation"
	"github.com/alejandrodnm/forecastbot/internal/application/pipeline"
	"github.com/alejandrodnm/forecastbot/internal/platform/httpx"
	"github.com/alejandrodnm/forecastbot/internal/ports"
)

// app agrupa la configuración cargada y construye los adapters que pide cada
// subcomando.
type app struct {
	cfg     *config.Config
	closers []func() error
	table   bool
}

func (a *app) artifacts() (*report.Store, error) {
	return report.NewStore(a.cfg.Report.Dir)
}

func (a *app) console() *notify.Console {
	return notify.NewConsole(a.table)
}

// storage devuelve nil si storage.dsn está vacío.
func (a *app) storage() (ports.Storage, error) {
	if a.cfg.Storage.DSN == "" {
		return nil, nil
	}
	s, err := storage.NewSQLiteStorage(a.cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, s.Close)
	return s, nil
}

func (a *app) market() *twelvedata.Client {
	return twelvedata.NewClient(a.cfg.Market.BaseURL, a.cfg.Market.APIKey, httpx.Options{
		Timeout:    a.cfg.MarketTimeout(),
		RatePerSec: a.cfg.Market.RatePerSec,
		MaxRetries: a.cfg.Market.MaxRetries,
	})
}

func (a *app) news() *news.Scraper {
	return news.NewScraper(a.cfg.News.URLTemplate, news.Selectors(a.cfg.News.Selectors), httpx.Options{
		RatePerSec: a.cfg.News.RatePerSec,
	})
}

func (a *app) recommender() *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:      a.cfg.LLM.APIKey,
		BaseURL:     a.cfg.LLM.BaseURL,
		Model:       a.cfg.LLM.Model,
		Timeout:     a.cfg.LLMTimeout(),
		Temperature: a.cfg.LLM.Temperature,
	})
}

func (a *app) evaluator(store *report.Store) (*evaluation.Service, error) {
	db, err := a.storage()
	if err != nil {
		return nil, err
	}
	source := predictions.NewFileSource(a.cfg.InputPath(), a.cfg.Evaluation.DateColumn)
	return evaluation.New(evaluation.Config{
		Instruments: a.cfg.Evaluation.Instruments,
		Horizon:     a.cfg.Horizon(),
		Workers:     a.cfg.Evaluation.Workers,
		Symbol:      a.cfg.Symbol,
	}, source, db, a.console(), store), nil
}

// pipeline construye el pipeline completo. El evaluador solo se abre si
// withEvaluator es true (evita tocar la DB en pasos que no la usan).
func (a *app) pipeline(withEvaluator bool) (*pipeline.Pipeline, error) {
	store, err := a.artifacts()
	if err != nil {
		return nil, err
	}

	var eval pipeline.Evaluator
	if withEvaluator {
		svc, err := a.evaluator(store)
		if err != nil {
			return nil, err
		}
		eval = svc
	}

	market := a.market()
	return pipeline.New(pipeline.Config{
		Symbol:       a.cfg.Symbol,
		LookbackDays: a.cfg.Market.LookbackDays,
		NewsLimit:    a.cfg.News.Limit,
	}, market, market, a.news(), eval, a.recommender(), store), nil
}
