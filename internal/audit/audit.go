// Package audit persists the Authorize decisions its caller records to a
// local SQLite database and prunes old records on a cron schedule. It also
// implements a rate limiter: a sliding per-scope window bounding how many
// calls a scope may make per minute, independent of the kernel's own
// stateless policy tables.
package audit

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/robfig/cron/v3"

	"github.com/jholhewres/policyguard/pkg/kernel"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	call_id     TEXT NOT NULL,
	tool_name   TEXT NOT NULL,
	scope       TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	reason      TEXT,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions(created_at);
`

// Record is a single persisted authorization decision.
type Record struct {
	ID        int64
	CallID    string
	ToolName  string
	Scope     string
	Outcome   string // "allowed", "denied", "needs_confirmation", "invalid", "error"
	Reason    string
	CreatedAt time.Time
}

// Log is the SQLite-backed audit trail.
type Log struct {
	db     *sql.DB
	logger *slog.Logger
	mu     sync.Mutex
	cron   *cron.Cron
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures the decisions table exists.
func Open(path string, logger *slog.Logger) (*Log, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("audit: opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: creating schema: %w", err)
	}
	return &Log{db: db, logger: logger.With("component", "audit")}, nil
}

// Close closes the underlying database and stops the pruning cron, if one
// was started.
func (l *Log) Close() error {
	if l.cron != nil {
		l.cron.Stop()
	}
	return l.db.Close()
}

// outcomeFor classifies an Authorize error into a short outcome label.
func outcomeFor(err error) (outcome, reason string) {
	if err == nil {
		return "allowed", ""
	}
	toolErr, ok := err.(*kernel.ToolError)
	if !ok {
		return "error", err.Error()
	}
	switch toolErr.Kind {
	case kernel.KindDenied:
		return "denied", toolErr.Reason
	case kernel.KindInvalid:
		return "invalid", toolErr.Reason
	case kernel.KindNeedsConfirmation:
		return "needs_confirmation", ""
	default:
		return "error", toolErr.Reason
	}
}

// Record persists the outcome of one Authorize call.
func (l *Log) Record(call kernel.ToolCall, scope kernel.ToolScope, authErr error) error {
	outcome, reason := outcomeFor(authErr)

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.Exec(
		`INSERT INTO decisions (call_id, tool_name, scope, outcome, reason) VALUES (?, ?, ?, ?, ?)`,
		call.ID, call.ToolName, string(scope), outcome, reason,
	)
	if err != nil {
		l.logger.Warn("failed to persist audit record", "error", err)
		return fmt.Errorf("audit: inserting record: %w", err)
	}
	return nil
}

// Recent returns up to limit most-recent records, newest first.
func (l *Log) Recent(limit int) ([]Record, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := l.db.Query(
		`SELECT id, call_id, tool_name, scope, outcome, reason, created_at FROM decisions ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("audit: querying records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.CallID, &r.ToolName, &r.Scope, &r.Outcome, &r.Reason, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scanning record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the total number of persisted records.
func (l *Log) Count() int {
	var n int
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM decisions`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// StartPruning schedules a cron job that deletes records older than
// retainFor. cronExpr follows robfig/cron syntax (e.g. "@daily" or a
// standard 5-field expression).
func (l *Log) StartPruning(cronExpr string, retainFor time.Duration) error {
	c := cron.New()
	_, err := c.AddFunc(cronExpr, func() {
		cutoff := time.Now().Add(-retainFor)
		l.mu.Lock()
		res, err := l.db.Exec(`DELETE FROM decisions WHERE created_at < ?`, cutoff)
		l.mu.Unlock()
		if err != nil {
			l.logger.Warn("audit pruning failed", "error", err)
			return
		}
		if n, _ := res.RowsAffected(); n > 0 {
			l.logger.Info("pruned audit records", "count", n, "cutoff", cutoff)
		}
	})
	if err != nil {
		return fmt.Errorf("audit: scheduling prune job %q: %w", cronExpr, err)
	}
	l.cron = c
	c.Start()
	return nil
}

// RateLimiter bounds how many calls a scope may make within a sliding
// one-minute window. It counts every call its caller reports through
// Allow and does not distinguish destructive tools from others. It is
// consulted by the caller, not by kernel.Authorize itself — policyguardd
// serve checks it for each CloudAI directive before authorizing it. The
// kernel stays purely policy; rate limiting is an operational supplement
// layered on top.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	history map[kernel.ToolScope][]time.Time
}

// NewRateLimiter creates a limiter allowing up to maxPerMinute calls per
// scope in any rolling 60-second window.
func NewRateLimiter(maxPerMinute int) *RateLimiter {
	return &RateLimiter{
		window:  time.Minute,
		limit:   maxPerMinute,
		history: make(map[kernel.ToolScope][]time.Time),
	}
}

// Allow records one approval attempt for scope at time now and reports
// whether it falls within the configured rate limit.
func (r *RateLimiter) Allow(scope kernel.ToolScope, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-r.window)
	events := r.history[scope]
	kept := events[:0]
	for _, t := range events {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= r.limit {
		r.history[scope] = kept
		return false
	}

	r.history[scope] = append(kept, now)
	return true
}
