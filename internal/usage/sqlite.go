package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createUsageTable = `
CREATE TABLE IF NOT EXISTS usage_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts TEXT NOT NULL,
	model TEXT NOT NULL,
	prompt_tokens INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	total_tokens INTEGER NOT NULL,
	cost_usd REAL NOT NULL,
	endpoint TEXT NOT NULL,
	user_action TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_log_ts ON usage_log (ts);
`

// SQLiteSink mirrors usage entries into an embedded store so accounting
// survives restarts. The in-memory ring stays authoritative for queries.
type SQLiteSink struct {
	db *sql.DB
}

func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open usage store: %w", err)
	}
	// the embedded driver is single-writer; one connection avoids lock churn
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createUsageTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init usage store: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Append(ctx context.Context, e LogEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_log
		 (ts, model, prompt_tokens, completion_tokens, total_tokens, cost_usd, endpoint, user_action)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp.Format(time.RFC3339Nano),
		e.Model,
		e.PromptTokens,
		e.CompletionTokens,
		e.TotalTokens,
		e.CostUSD,
		e.Endpoint,
		e.UserAction,
	)
	if err != nil {
		return fmt.Errorf("append usage entry: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
