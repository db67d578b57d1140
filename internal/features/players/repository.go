// Package players — repository.go отвечает за все операции с таблицей players в БД.
// Каждая функция выполняет один SQL-запрос и возвращает результат или ошибку.
package players

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nomercyzone.in/tournament-bot/internal/common"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const playerColumns = `
	id, user_id, username, first_name, is_banned, balance,
	referral_code, free_entries, tournaments_joined, total_spent, total_earned,
	payment_summaries, joined_at, created_at, updated_at
`

// Create добавляет нового игрока.
// На конфликте по user_id обновляет только имя/username
// (не трогает бан, баланс и реферальный код).
func (r *Repository) Create(ctx context.Context, p *Player) error {
	query := `
		INSERT INTO players (user_id, username, first_name, referral_code)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, p.UserID, p.Username, p.FirstName, p.ReferralCode)
	if err != nil {
		return common.StoreError("создание игрока", err)
	}
	return nil
}

// GetByUserID: если не найден — common.ErrPlayerNotFound.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE user_id = $1`, playerColumns)
	return r.scanPlayer(r.db.QueryRow(ctx, query, userID))
}

// GetByUsername ищет игрока по @username (без @), без учёта регистра.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE LOWER(username) = LOWER($1)`, playerColumns)
	return r.scanPlayer(r.db.QueryRow(ctx, query, username))
}

// GetByReferralCode ищет владельца реферального кода.
func (r *Repository) GetByReferralCode(ctx context.Context, code string) (*Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE referral_code = $1`, playerColumns)
	return r.scanPlayer(r.db.QueryRow(ctx, query, code))
}

func (r *Repository) Exists(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM players WHERE user_id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, common.StoreError("проверка существования игрока", err)
	}
	return exists, nil
}

// ReferralCodeExists — порт для ids.Generator.
func (r *Repository) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM players WHERE referral_code = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, common.StoreError("проверка реферального кода", err)
	}
	return exists, nil
}

// SetBanned переключает флаг бана. Возвращает false, если игрок не найден
// или флаг уже имел нужное значение.
func (r *Repository) SetBanned(ctx context.Context, userID int64, banned bool) (bool, error) {
	query := `
		UPDATE players
		SET is_banned = $2, updated_at = NOW()
		WHERE user_id = $1 AND is_banned <> $2
	`
	tag, err := r.db.Exec(ctx, query, userID, banned)
	if err != nil {
		return false, common.StoreError("обновление флага бана", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AdjustBalance изменяет баланс игрока на delta (операторская корректировка,
// выплата выигрыша). Выигрыши дополнительно попадают в total_earned.
func (r *Repository) AdjustBalance(ctx context.Context, userID int64, delta int64, isWinnings bool) error {
	query := `
		UPDATE players
		SET balance = balance + $2,
		    total_earned = total_earned + CASE WHEN $3 AND $2 > 0 THEN $2 ELSE 0 END,
		    updated_at = NOW()
		WHERE user_id = $1
	`
	tag, err := r.db.Exec(ctx, query, userID, delta, isWinnings)
	if err != nil {
		return common.StoreError("корректировка баланса", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrPlayerNotFound
	}
	return nil
}

// AppendPaymentSummary дописывает краткую запись о платеже в денормализованный
// массив. Если по этому турниру запись уже есть (переподача) — заменяет её.
func (r *Repository) AppendPaymentSummary(ctx context.Context, userID int64, s PaymentSummary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("сериализация сводки платежа: %w", err)
	}

	query := `
		UPDATE players
		SET payment_summaries = (
			SELECT COALESCE(jsonb_agg(e), '[]'::jsonb)
			FROM jsonb_array_elements(payment_summaries) e
			WHERE e->>'tournament_code' <> $2
		) || jsonb_build_array($3::jsonb),
		    updated_at = NOW()
		WHERE user_id = $1
	`
	if _, err := r.db.Exec(ctx, query, userID, s.TournamentCode, string(payload)); err != nil {
		return common.StoreError("запись сводки платежа", err)
	}
	return nil
}

// MirrorSummaryStatus отражает новый статус платежа в денормализованном
// массиве. Один атомарный UPDATE; расхождение не критично — источник
// истины остаётся в payments.
func (r *Repository) MirrorSummaryStatus(ctx context.Context, userID int64, tournamentCode, status string) error {
	query := `
		UPDATE players
		SET payment_summaries = (
			SELECT COALESCE(jsonb_agg(
				CASE WHEN e->>'tournament_code' = $2
				     THEN e || jsonb_build_object('status', $3::text)
				     ELSE e
				END), '[]'::jsonb)
			FROM jsonb_array_elements(payment_summaries) e
		),
		    updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, userID, tournamentCode, status)
	if err != nil {
		return common.StoreError("отражение статуса платежа", err)
	}
	return nil
}

// AddSpent учитывает подтверждённый взнос в total_spent.
func (r *Repository) AddSpent(ctx context.Context, userID int64, amount int64) error {
	query := `
		UPDATE players
		SET total_spent = total_spent + $2, updated_at = NOW()
		WHERE user_id = $1
	`
	if _, err := r.db.Exec(ctx, query, userID, amount); err != nil {
		return common.StoreError("учёт взноса", err)
	}
	return nil
}

func (r *Repository) scanPlayer(row pgx.Row) (*Player, error) {
	var p Player
	err := row.Scan(
		&p.ID, &p.UserID, &p.Username, &p.FirstName, &p.IsBanned, &p.Balance,
		&p.ReferralCode, &p.FreeEntries, &p.TournamentsJoined, &p.TotalSpent, &p.TotalEarned,
		&p.PaymentSummaries, &p.JoinedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrPlayerNotFound
		}
		return nil, common.StoreError("чтение игрока", err)
	}
	return &p, nil
}
