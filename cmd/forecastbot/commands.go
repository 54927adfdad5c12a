package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alejandrodnm/forecastbot/internal/application/pipeline"
)

func newMovingAvgCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "movingavg",
		Short: "Fetch recent daily closes and write MA_5 / MA_20",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline(false)
			if err != nil {
				return err
			}
			snap, err := p.MovingAverage(cmd.Context())
			if err != nil {
				return err
			}
			a.console().PrintMovingAverage(snap)
			return nil
		},
	}
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Fetch company fundamentals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline(false)
			if err != nil {
				return err
			}
			_, err = p.CompanyInfo(cmd.Context())
			return err
		},
	}
}

func newNewsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Scrape recent headlines and write them as JSON and CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit > 0 {
				a.cfg.News.Limit = limit
			}
			p, err := a.pipeline(false)
			if err != nil {
				return err
			}
			items, err := p.News(cmd.Context())
			if err != nil {
				return err
			}
			a.console().PrintNews(a.cfg.Symbol, items)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of headlines (overrides config)")
	return cmd
}

func newEvaluateCmd(a *app) *cobra.Command {
	var (
		horizon     int
		instruments []string
		input       string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score predicted vs. actual prices and rank instruments by predicted rise",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("horizon") {
				a.cfg.Evaluation.Horizon = &horizon
			}
			if len(instruments) > 0 {
				a.cfg.Evaluation.Instruments = instruments
			}
			if input != "" {
				a.cfg.Evaluation.Input = input
			}

			store, err := a.artifacts()
			if err != nil {
				return err
			}
			svc, err := a.evaluator(store)
			if err != nil {
				return err
			}
			_, _, err = svc.Run(cmd.Context())
			return err
		},
	}
	cmd.Flags().IntVar(&horizon, "horizon", 7, "rows between a prediction and the actual it targets")
	cmd.Flags().StringSliceVar(&instruments, "instruments", nil, "comma-separated instruments (default: all in the CSV)")
	cmd.Flags().StringVar(&input, "input", "", "prediction CSV (overrides config)")
	cmd.Flags().BoolVar(&a.table, "table", false, "print the full table instead of one line")
	return cmd
}

func newRecommendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Ask the LLM for a one-week rise/fall call using the written artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline(false)
			if err != nil {
				return err
			}
			rec, err := p.Recommend(cmd.Context())
			if errors.Is(err, pipeline.ErrEmptyAnalysis) {
				fmt.Fprintf(cmd.OutOrStdout(), "no rows in the %s analysis; nothing to recommend\n", a.cfg.Symbol)
				return nil
			}
			if err != nil {
				return err
			}
			a.console().PrintRecommendation(rec)
			return nil
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every step: movingavg, info, news, evaluate, recommend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline(true)
			if err != nil {
				return err
			}
			rec, err := p.RunAll(cmd.Context())
			if errors.Is(err, pipeline.ErrEmptyAnalysis) {
				fmt.Fprintf(cmd.OutOrStdout(), "no rows in the %s analysis; nothing to recommend\n", a.cfg.Symbol)
				return nil
			}
			if err != nil {
				return err
			}
			a.console().PrintRecommendation(rec)
			return nil
		},
	}
	cmd.Flags().BoolVar(&a.table, "table", false, "print the full evaluation table")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved evaluation runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.storage()
			if err != nil {
				return err
			}
			if db == nil {
				return fmt.Errorf("history: storage.dsn is empty")
			}
			to := time.Now()
			runs, err := db.GetHistory(cmd.Context(), to.AddDate(0, 0, -days), to)
			if err != nil {
				return err
			}
			a.console().PrintHistory(runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "how many days back to list")
	return cmd
}
