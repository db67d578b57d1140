// Package referrals — repository.go содержит SQL-запросы для таблицы referrals.
package referrals

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"nomercyzone.in/tournament-bot/internal/common"
)

// Repository предоставляет доступ к таблице referrals.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий рефералов.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Grant атомарно фиксирует приглашение и начисляет пригласившему
// бесплатный вход. Один statement: вставка с ON CONFLICT DO NOTHING
// по referee_user_id плюс инкремент free_entries через CTE.
// Возвращает false, если приглашённый уже засчитан ранее.
func (r *Repository) Grant(ctx context.Context, referrerUserID, refereeUserID int64, code string) (bool, error) {
	query := `
		WITH ins AS (
			INSERT INTO referrals (referrer_user_id, referee_user_id, code)
			VALUES ($1, $2, $3)
			ON CONFLICT (referee_user_id) DO NOTHING
			RETURNING referrer_user_id
		)
		UPDATE players
		SET free_entries = free_entries + 1,
		    updated_at = NOW()
		WHERE user_id IN (SELECT referrer_user_id FROM ins)`

	tag, err := r.pool.Exec(ctx, query, referrerUserID, refereeUserID, code)
	if err != nil {
		return false, common.StoreError("запись реферала", err)
	}
	return tag.RowsAffected() > 0, nil
}

// HasReferee проверяет, засчитан ли уже приглашённый игрок.
func (r *Repository) HasReferee(ctx context.Context, refereeUserID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM referrals WHERE referee_user_id = $1)`

	err := r.pool.QueryRow(ctx, query, refereeUserID).Scan(&exists)
	if err != nil {
		return false, common.StoreError("проверка реферала", err)
	}
	return exists, nil
}

// CountByReferrer возвращает число игроков, приведённых пользователем.
func (r *Repository) CountByReferrer(ctx context.Context, referrerUserID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM referrals WHERE referrer_user_id = $1`

	err := r.pool.QueryRow(ctx, query, referrerUserID).Scan(&count)
	if err != nil {
		return 0, common.StoreError("подсчёт рефералов", err)
	}
	return count, nil
}
