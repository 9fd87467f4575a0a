package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"rainwatch/internal/types"
)

// AlertLogRepository provides data access for the rain_alert_log table, the
// durable side of the dedup/cooldown ledger. Each row records when a user
// was last notified about a specific rain event, keyed by
// (user_id, city, event_bucket).
//
// The single-writer discipline for a key is enforced here at the storage
// layer: Claim performs the check-cooldown-then-record read-modify-write as
// one conditional upsert, so two concurrent scans for the same user/event
// cannot race into a double-send.
type AlertLogRepository struct {
	db DBTX
}

// NewAlertLogRepository creates an AlertLogRepository backed by the given
// database connection (pool or transaction).
func NewAlertLogRepository(db DBTX) *AlertLogRepository {
	return &AlertLogRepository{db: db}
}

// Claim atomically records a notification for key unless one was already
// recorded after cutoff. It returns true when the caller won the claim and
// should send, false when the cooldown is still active.
//
// The WHERE clause on the conflict arm makes the upsert conditional: an
// existing row inside the cooldown window matches no rows, so the statement
// reports zero affected rows and the claim is denied.
func (r *AlertLogRepository) Claim(ctx context.Context, key types.AlertKey, cutoff time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO rain_alert_log (user_id, city, event_bucket, last_sent_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, city, event_bucket) DO UPDATE SET last_sent_at = NOW()
		 WHERE rain_alert_log.last_sent_at <= $4`,
		key.UserID, key.City, key.EventBucket, cutoff,
	)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to claim alert send", err)
	}
	return tag.RowsAffected() > 0, nil
}

// HasRecent reports whether a notification for key was recorded after
// cutoff. Read-only; callers deciding whether to send should use Claim,
// which performs the check and the record as one atomic statement.
func (r *AlertLogRepository) HasRecent(ctx context.Context, key types.AlertKey, cutoff time.Time) (bool, error) {
	sentAt, err := r.LastSentAt(ctx, key)
	if err != nil {
		return false, err
	}
	return sentAt.After(cutoff), nil
}

// Record unconditionally upserts the notification timestamp for key to now.
func (r *AlertLogRepository) Record(ctx context.Context, key types.AlertKey) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO rain_alert_log (user_id, city, event_bucket, last_sent_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, city, event_bucket) DO UPDATE SET last_sent_at = NOW()`,
		key.UserID, key.City, key.EventBucket,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to record alert send", err)
	}
	return nil
}

// LastSentAt returns when a notification for key was last recorded.
// A key that was never recorded is reported as (zero time, nil).
func (r *AlertLogRepository) LastSentAt(ctx context.Context, key types.AlertKey) (time.Time, error) {
	row := r.db.QueryRow(ctx,
		`SELECT last_sent_at FROM rain_alert_log
		 WHERE user_id = $1 AND city = $2 AND event_bucket = $3`,
		key.UserID, key.City, key.EventBucket,
	)

	var sentAt time.Time
	if err := row.Scan(&sentAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, types.NewAppError(types.ErrCodeInternalDB, "failed to read alert log entry", err)
	}
	return sentAt, nil
}

// Prune removes all ledger entries recorded before cutoff, bounding storage
// growth. Returns the number of rows removed.
func (r *AlertLogRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM rain_alert_log WHERE last_sent_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to prune alert log", err)
	}
	return tag.RowsAffected(), nil
}
