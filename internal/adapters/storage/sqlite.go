package storage

// sqlite.go: histórico de corridas de evaluación.
//
// Estrategia:
//   - `runs`: una fila por corrida (horizonte, timestamps, mejor instrumento).
//   - `run_results`: las filas combinadas de la corrida, en el orden del artefacto.
//   - `run_skipped`: instrumentos que quedaron fuera y por qué.
//   - Prune automático al arrancar: corridas > 90d (cascade sobre resultados).

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/guregu/null/v6"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/forecastbot/internal/domain"
)

const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS runs (
    id               TEXT PRIMARY KEY,
    started_at       TEXT    NOT NULL,
    completed_at     TEXT    NOT NULL,
    horizon          INTEGER NOT NULL,
    results          INTEGER NOT NULL DEFAULT 0,
    skipped          INTEGER NOT NULL DEFAULT 0,
    best_instrument  TEXT,
    best_rise_prob   REAL
);

CREATE TABLE IF NOT EXISTS run_results (
    run_id           TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position         INTEGER NOT NULL,
    instrument       TEXT    NOT NULL,
    mae              REAL,
    mse              REAL,
    rmse             REAL,
    mape             REAL,
    accuracy         REAL,
    last_actual      REAL,
    predicted_future REAL,
    predicted_rise   INTEGER,
    rise_prob        REAL,
    PRIMARY KEY (run_id, instrument)
);

CREATE TABLE IF NOT EXISTS run_skipped (
    run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    instrument TEXT NOT NULL,
    stage      TEXT NOT NULL,
    reason     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

const (
	retentionRuns = 90 * 24 * time.Hour
	// ancho fijo: las comparaciones BETWEEN sobre TEXT son lexicográficas
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// ErrMissingRunID se devuelve al guardar una corrida sin ID.
var ErrMissingRunID = errors.New("run id is required")

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia corridas antiguas.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persiste la corrida, sus filas combinadas y los instrumentos saltados
// en una sola transacción. Guardar dos veces el mismo ID reemplaza la corrida.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run domain.EvaluationRun) error {
	if run.ID == "" {
		return fmt.Errorf("storage.SaveRun: %w", ErrMissingRunID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"run_results", "run_skipped"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, run.ID); err != nil {
			return fmt.Errorf("storage.SaveRun: clear %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
		return fmt.Errorf("storage.SaveRun: replace %s: %w", run.ID, err)
	}

	var bestInstrument null.String
	var bestRise null.Float
	if top, ok := run.Top(); ok {
		bestInstrument = null.StringFrom(top.Instrument)
		bestRise = top.RiseProbability
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, completed_at, horizon, results, skipped, best_instrument, best_rise_prob)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		formatTime(run.CompletedAt),
		run.Horizon,
		len(run.Results),
		len(run.Skipped),
		bestInstrument,
		bestRise,
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	resStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_results
			(run_id, position, instrument, mae, mse, rmse, mape, accuracy,
			 last_actual, predicted_future, predicted_rise, rise_prob)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare results: %w", err)
	}
	defer resStmt.Close()

	for i, r := range run.Results {
		if _, err := resStmt.ExecContext(ctx,
			run.ID, i, r.Instrument,
			r.MAE, r.MSE, r.RMSE, r.MAPE, r.Accuracy,
			r.LastActual, r.PredictedFuture, r.PredictedRise, r.RiseProbability,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert result %s: %w", r.Instrument, err)
		}
	}

	for _, sk := range run.Skipped {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_skipped (run_id, instrument, stage, reason) VALUES (?, ?, ?, ?)`,
			run.ID, sk.Instrument, sk.Stage, sk.Reason,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert skipped %s: %w", sk.Instrument, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// GetHistory devuelve las corridas iniciadas en [from, to], más recientes primero,
// con sus filas en el orden original.
func (s *SQLiteStorage) GetHistory(ctx context.Context, from, to time.Time) ([]domain.EvaluationRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, completed_at, horizon
		FROM runs
		WHERE started_at BETWEEN ? AND ?
		ORDER BY started_at DESC
	`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query: %w", err)
	}

	var runs []domain.EvaluationRun
	for rows.Next() {
		var run domain.EvaluationRun
		var started, completed string
		if err := rows.Scan(&run.ID, &started, &completed, &run.Horizon); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage.GetHistory: scan run: %w", err)
		}
		run.StartedAt = parseTime(run.ID, "started_at", started)
		run.CompletedAt = parseTime(run.ID, "completed_at", completed)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("storage.GetHistory: iterate runs: %w", err)
	}
	rows.Close() // una sola conexión: liberar antes de las subconsultas

	for i := range runs {
		if runs[i].Results, err = s.results(ctx, runs[i].ID); err != nil {
			return nil, err
		}
		if runs[i].Skipped, err = s.skipped(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func (s *SQLiteStorage) results(ctx context.Context, runID string) ([]domain.CombinedResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT instrument, mae, mse, rmse, mape, accuracy,
		       last_actual, predicted_future, predicted_rise, rise_prob
		FROM run_results
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query results %s: %w", runID, err)
	}
	defer rows.Close()

	var out []domain.CombinedResult
	for rows.Next() {
		var r domain.CombinedResult
		if err := rows.Scan(
			&r.Instrument, &r.MAE, &r.MSE, &r.RMSE, &r.MAPE, &r.Accuracy,
			&r.LastActual, &r.PredictedFuture, &r.PredictedRise, &r.RiseProbability,
		); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) skipped(ctx context.Context, runID string) ([]domain.SkippedInstrument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT instrument, stage, reason FROM run_skipped WHERE run_id = ? ORDER BY instrument`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query skipped %s: %w", runID, err)
	}
	defer rows.Close()

	var out []domain.SkippedInstrument
	for rows.Next() {
		var sk domain.SkippedInstrument
		if err := rows.Scan(&sk.Instrument, &sk.Stage, &sk.Reason); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan skipped: %w", err)
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

// pruneOld elimina corridas antiguas para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := formatTime(time.Now().Add(-retentionRuns))
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		slog.Warn("prune old runs failed", "err", err)
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Debug("pruned old runs", "count", n)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime devuelve el zero value si la columna no tiene el formato esperado.
func parseTime(runID, column, v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		slog.Warn("bad timestamp in run history", "run_id", runID, "column", column, "value", v, "err", err)
		return time.Time{}
	}
	return t
}
