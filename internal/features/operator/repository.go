// Package operator — repository.go работает с таблицами operator_sessions
// и operator_login_attempts.
package operator

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nomercyzone.in/tournament-bot/internal/common"
)

// Repository работает с операторскими таблицами.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт репозиторий операторских сессий.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSession создаёт новую сессию оператора.
func (r *Repository) CreateSession(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO operator_sessions (user_id, session_token, expires_at, is_active)
		VALUES ($1, $2, $3, TRUE)`

	_, err := r.pool.Exec(ctx, query, session.UserID, session.SessionToken, session.ExpiresAt)
	if err != nil {
		return common.StoreError("создание сессии", err)
	}
	return nil
}

// GetActiveSession возвращает живую сессию пользователя, если она есть.
func (r *Repository) GetActiveSession(ctx context.Context, userID int64) (*Session, error) {
	query := `
		SELECT id, user_id, session_token, authenticated_at, expires_at, last_activity, is_active
		FROM operator_sessions
		WHERE user_id = $1 AND is_active = TRUE AND expires_at > NOW()
		ORDER BY authenticated_at DESC
		LIMIT 1`

	var s Session
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.SessionToken, &s.AuthenticatedAt,
		&s.ExpiresAt, &s.LastActivity, &s.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrSessionExpired
	}
	if err != nil {
		return nil, common.StoreError("получение сессии", err)
	}
	return &s, nil
}

// DeactivateSessions гасит все сессии пользователя.
func (r *Repository) DeactivateSessions(ctx context.Context, userID int64) error {
	query := `UPDATE operator_sessions SET is_active = FALSE WHERE user_id = $1`

	_, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return common.StoreError("деактивация сессий", err)
	}
	return nil
}

// TouchActivity обновляет время последней активности.
func (r *Repository) TouchActivity(ctx context.Context, userID int64) error {
	query := `UPDATE operator_sessions SET last_activity = NOW() WHERE user_id = $1 AND is_active = TRUE`

	_, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return common.StoreError("обновление активности", err)
	}
	return nil
}

// LogAttempt записывает попытку входа.
func (r *Repository) LogAttempt(ctx context.Context, userID int64, success bool) error {
	query := `INSERT INTO operator_login_attempts (user_id, success) VALUES ($1, $2)`

	_, err := r.pool.Exec(ctx, query, userID, success)
	if err != nil {
		return common.StoreError("запись попытки входа", err)
	}
	return nil
}

// CountRecentFailures возвращает число неудачных попыток за период.
func (r *Repository) CountRecentFailures(ctx context.Context, userID int64, period time.Duration) (int, error) {
	since := time.Now().Add(-period)
	query := `
		SELECT COUNT(*) FROM operator_login_attempts
		WHERE user_id = $1 AND success = FALSE AND attempt_time > $2`

	var count int
	err := r.pool.QueryRow(ctx, query, userID, since).Scan(&count)
	if err != nil {
		return 0, common.StoreError("подсчёт попыток входа", err)
	}
	return count, nil
}
