package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"weekly-etf-dashboard/internal/models"
)

// SQLiteRecorder implements Recorder using SQLite.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (or creates) the recorder database.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	r := &SQLiteRecorder{db: db}
	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_date TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		item_count INTEGER NOT NULL,
		annotated_count INTEGER NOT NULL,
		alert_count INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		ticker TEXT NOT NULL,
		type TEXT NOT NULL,
		pct REAL NOT NULL,
		ex_dividend_date TEXT,
		message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, ticker, type, ex_dividend_date),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_date ON runs(run_date);
	CREATE INDEX IF NOT EXISTS idx_alerts_ticker ON alerts(ticker, created_at);
	`
	_, err := r.db.Exec(schema)
	return err
}

// RecordRun inserts the run row and its alerts in one transaction and
// returns the new run id.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, run *RunSummary, alerts []models.Alert) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (run_date, generated_at, item_count, annotated_count, alert_count)
		VALUES (?, ?, ?, ?, ?)`,
		run.RunDate, run.GeneratedAt, run.ItemCount, run.AnnotatedCount, run.AlertCount)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, a := range alerts {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO alerts (run_id, ticker, type, pct, ex_dividend_date, message)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, a.Ticker, string(a.Type), a.Pct, a.ExDividendDate.ValueOrZero(), a.Message)
		if err != nil {
			return 0, fmt.Errorf("failed to insert alert for %s: %w", a.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	run.ID = runID
	return runID, nil
}

// RecentRuns returns the latest runs, newest first.
func (r *SQLiteRecorder) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_date, generated_at, item_count, annotated_count, alert_count
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(&run.ID, &run.RunDate, &run.GeneratedAt, &run.ItemCount, &run.AnnotatedCount, &run.AlertCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// AlertHistory returns persisted alerts, newest first.
func (r *SQLiteRecorder) AlertHistory(ctx context.Context, filter AlertFilter) ([]AlertRecord, error) {
	query := `
		SELECT a.run_id, r.run_date, a.ticker, a.type, a.pct, a.ex_dividend_date, a.message
		FROM alerts a JOIN runs r ON r.id = a.run_id`
	var conds []string
	var args []interface{}
	if filter.Ticker != "" {
		conds = append(conds, "a.ticker = ?")
		args = append(args, strings.ToUpper(filter.Ticker))
	}
	if filter.Type != "" {
		conds = append(conds, "a.type = ?")
		args = append(args, filter.Type)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY a.id DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var out []AlertRecord
	for rows.Next() {
		var rec AlertRecord
		if err := rows.Scan(&rec.RunID, &rec.RunDate, &rec.Ticker, &rec.Type, &rec.Pct, &rec.ExDividendDate, &rec.Message); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
