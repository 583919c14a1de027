package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"places-insight/internal/services/analysis"
	"places-insight/internal/services/sentiment"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DB persists analysis runs to Postgres. Persistence is optional: the
// pipeline's primary output is the report files, and callers skip this
// layer entirely when no database is configured.
type DB struct {
	pool *pgxpool.Pool
}

func NewDB(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Msg("Database connection established")
	return &DB{pool: pool}, nil
}

func (d *DB) Close() {
	d.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id BIGSERIAL PRIMARY KEY,
	label TEXT NOT NULL,
	total_businesses INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS business_analyses (
	id BIGSERIAL PRIMARY KEY,
	run_id BIGINT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
	business_name TEXT NOT NULL,
	overall_sentiment TEXT NOT NULL,
	sentiment_score DOUBLE PRECISION NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS fleet_reports (
	run_id BIGINT PRIMARY KEY REFERENCES analysis_runs(id) ON DELETE CASCADE,
	report JSONB NOT NULL,
	trends JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (d *DB) InitSchema(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// CreateRun records the start of one pipeline run and returns its id.
func (d *DB) CreateRun(ctx context.Context, label string, totalBusinesses int) (int64, error) {
	var id int64
	err := d.pool.QueryRow(ctx,
		`INSERT INTO analysis_runs (label, total_businesses) VALUES ($1, $2) RETURNING id`,
		label, totalBusinesses,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// SaveAnalysis stores one business analysis under a run. The full
// record goes into a JSONB payload; the scalar columns exist for
// querying without unpacking it.
func (d *DB) SaveAnalysis(ctx context.Context, runID int64, a analysis.Analysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis for %s: %w", a.Name, err)
	}

	_, err = d.pool.Exec(ctx,
		`INSERT INTO business_analyses (run_id, business_name, overall_sentiment, sentiment_score, payload)
		 VALUES ($1, $2, $3, $4, $5)`,
		runID, a.Name, a.OverallSentiment(), a.SentimentScore(), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis for %s: %w", a.Name, err)
	}
	return nil
}

// SaveFleetReport stores the aggregate for a run.
func (d *DB) SaveFleetReport(ctx context.Context, runID int64, report sentiment.FleetReport, trends sentiment.Trends) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal fleet report: %w", err)
	}
	trendsJSON, err := json.Marshal(trends)
	if err != nil {
		return fmt.Errorf("failed to marshal trends: %w", err)
	}

	_, err = d.pool.Exec(ctx,
		`INSERT INTO fleet_reports (run_id, report, trends) VALUES ($1, $2, $3)
		 ON CONFLICT (run_id) DO UPDATE SET report = EXCLUDED.report, trends = EXCLUDED.trends`,
		runID, reportJSON, trendsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save fleet report: %w", err)
	}
	return nil
}

// Run summarizes one stored pipeline run.
type Run struct {
	ID              int64     `json:"id"`
	Label           string    `json:"label"`
	TotalBusinesses int       `json:"total_businesses"`
	CreatedAt       time.Time `json:"created_at"`
}

func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.pool.Query(ctx,
		`SELECT id, label, total_businesses, created_at FROM analysis_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Label, &run.TotalBusinesses, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunAnalyses loads the stored analyses for a run, in insertion
// order.
func (d *DB) GetRunAnalyses(ctx context.Context, runID int64) ([]analysis.Analysis, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT payload FROM business_analyses WHERE run_id = $1 ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var analyses []analysis.Analysis
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		var a analysis.Analysis
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}
