package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"rainwatch/internal/types"
)

// UserRepository provides data access for the users table: per-user
// language, saved city, and rain-alert opt-in.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a UserRepository backed by the given database
// connection (pool or transaction).
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Get returns the user record for a Telegram user ID. A missing user is
// reported as ErrCodeNotFoundUser so handlers can fall back to defaults.
func (r *UserRepository) Get(ctx context.Context, userID int64) (*types.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT user_id, language, city, rain_alerts, created_at, updated_at
		 FROM users WHERE user_id = $1`,
		userID,
	)

	var u types.User
	var lang string
	if err := row.Scan(&u.ID, &lang, &u.City, &u.RainAlerts, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to get user", err)
	}
	u.Language = types.Language(lang).Normalize()
	return &u, nil
}

// Upsert creates or fully updates a user record.
func (r *UserRepository) Upsert(ctx context.Context, u *types.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (user_id, language, city, rain_alerts)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
			language = EXCLUDED.language,
			city = EXCLUDED.city,
			rain_alerts = EXCLUDED.rain_alerts,
			updated_at = NOW()`,
		u.ID, string(u.Language.Normalize()), u.City, u.RainAlerts,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to upsert user", err)
	}
	return nil
}

// SetLanguage updates only the user's language, creating the record if needed.
func (r *UserRepository) SetLanguage(ctx context.Context, userID int64, lang types.Language) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (user_id, language) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET language = EXCLUDED.language, updated_at = NOW()`,
		userID, string(lang.Normalize()),
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to set language", err)
	}
	return nil
}

// SetCity updates only the user's saved city, creating the record if needed.
func (r *UserRepository) SetCity(ctx context.Context, userID int64, city string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (user_id, city) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET city = EXCLUDED.city, updated_at = NOW()`,
		userID, city,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to set city", err)
	}
	return nil
}

// SetRainAlerts toggles the user's rain-alert opt-in, creating the record
// if needed.
func (r *UserRepository) SetRainAlerts(ctx context.Context, userID int64, enabled bool) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (user_id, rain_alerts) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET rain_alerts = EXCLUDED.rain_alerts, updated_at = NOW()`,
		userID, enabled,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to set rain alerts", err)
	}
	return nil
}

// ListEnrolled returns all users with rain alerts enabled and a saved city,
// i.e. the population one alert scan iterates over.
func (r *UserRepository) ListEnrolled(ctx context.Context) ([]types.User, error) {
	return r.list(ctx,
		`SELECT user_id, language, city, rain_alerts, created_at, updated_at
		 FROM users WHERE rain_alerts AND city <> '' ORDER BY user_id`)
}

// ListWithCity returns all users with a saved city, regardless of alert
// opt-in. Used by the morning-report broadcast.
func (r *UserRepository) ListWithCity(ctx context.Context) ([]types.User, error) {
	return r.list(ctx,
		`SELECT user_id, language, city, rain_alerts, created_at, updated_at
		 FROM users WHERE city <> '' ORDER BY user_id`)
}

func (r *UserRepository) list(ctx context.Context, query string) ([]types.User, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list users", err)
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		var u types.User
		var lang string
		if err := rows.Scan(&u.ID, &lang, &u.City, &u.RainAlerts, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan user row", err)
		}
		u.Language = types.Language(lang).Normalize()
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating user rows", err)
	}
	return users, nil
}

// Stats returns aggregate user and alert counts for the admin summary.
func (r *UserRepository) Stats(ctx context.Context, since time.Time) (types.UserStats, error) {
	row := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE city <> ''),
			(SELECT COUNT(*) FROM users WHERE rain_alerts),
			(SELECT COUNT(*) FROM rain_alert_log WHERE last_sent_at >= $1)`,
		since,
	)

	var s types.UserStats
	if err := row.Scan(&s.TotalUsers, &s.UsersWithCity, &s.UsersWithAlert, &s.AlertsSent24h); err != nil {
		return types.UserStats{}, types.NewAppError(types.ErrCodeInternalDB, "failed to read user stats", err)
	}
	return s, nil
}
