package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/stayonscript/stayonscript/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionPrune removes expired login session rows.
	TaskSessionPrune = "sessions:prune"
	// TaskAuditTrim removes audit log rows past the retention window.
	TaskAuditTrim = "audit:trim"
)

// SessionPrunePayload configures a prune run.
type SessionPrunePayload struct {
	Before time.Time `json:"before,omitempty"`
}

// NewSessionPruneTask constructs an Asynq task.
func NewSessionPruneTask() (*asynq.Task, error) {
	data, err := json.Marshal(SessionPrunePayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPrune, data), nil
}

// NewSessionPruneHandler returns the handler deleting expired session rows.
func NewSessionPruneHandler(pool *pgxpool.Pool, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskSessionPrune)
		var payload SessionPrunePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		before := payload.Before
		if before.IsZero() {
			before = time.Now().UTC()
		}
		tag, err := pool.Exec(ctx, `DELETE FROM login_sessions WHERE expires_at < $1`, before)
		if err != nil {
			return tracker.End(err)
		}
		if logger != nil {
			logger.Info("pruned login sessions", slog.Int64("rows", tag.RowsAffected()))
		}
		return tracker.End(nil)
	}
}

// AuditTrimPayload configures a retention trim.
type AuditTrimPayload struct {
	Retention time.Duration `json:"retention,omitempty"`
}

// defaultAuditRetention keeps audit rows for one year.
const defaultAuditRetention = 365 * 24 * time.Hour

// NewAuditTrimTask constructs an Asynq task.
func NewAuditTrimTask() (*asynq.Task, error) {
	data, err := json.Marshal(AuditTrimPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditTrim, data), nil
}

// NewAuditTrimHandler returns the handler trimming old audit rows.
func NewAuditTrimHandler(pool *pgxpool.Pool, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskAuditTrim)
		var payload AuditTrimPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		retention := payload.Retention
		if retention <= 0 {
			retention = defaultAuditRetention
		}
		cutoff := time.Now().UTC().Add(-retention)
		tag, err := pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
		if err != nil {
			return tracker.End(err)
		}
		if logger != nil {
			logger.Info("trimmed audit logs", slog.Int64("rows", tag.RowsAffected()))
		}
		return tracker.End(nil)
	}
}
