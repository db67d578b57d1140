// Package payments — repository.go содержит SQL-запросы для таблицы payments.
// Все мутации — одиночные statements: конкурентные вызовы сериализуются
// в хранилище, без блокировок в памяти приложения.
package payments

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nomercyzone.in/tournament-bot/internal/common"
)

// Repository предоставляет доступ к платежам.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий платежей.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Submit записывает заявку на платёж. Один upsert:
//   - записи нет — создаётся pending;
//   - есть pending/declined — перезаписывается на месте (сумма, UTR,
//     статус сбрасывается в pending);
//   - есть confirmed — условие WHERE отфильтровывает строку,
//     и вызов завершается ErrAlreadyConfirmed без мутаций.
func (r *Repository) Submit(ctx context.Context, userID, tournamentID int64, amount int64, utr string) (*Payment, error) {
	query := `
		INSERT INTO payments (user_id, tournament_id, amount, utr, status)
		VALUES ($1, $2, $3, $4, 'pending')
		ON CONFLICT (user_id, tournament_id) DO UPDATE
		SET amount = EXCLUDED.amount,
		    utr = EXCLUDED.utr,
		    status = 'pending',
		    confirmed_at = NULL,
		    updated_at = NOW()
		WHERE payments.status <> 'confirmed'
		RETURNING id, user_id, tournament_id, amount, utr, status, confirmed_at, created_at, updated_at`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, userID, tournamentID, amount, utr))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrAlreadyConfirmed
	}
	if err != nil {
		return nil, common.StoreError("подача платежа", err)
	}
	return p, nil
}

// Confirm атомарно подтверждает платёж и увеличивает счётчик
// подтверждённых платежей турнира. Один CTE-statement: либо обе записи
// меняются, либо ни одна. Повторное подтверждение — no-op (false):
// условие status <> 'confirmed' отфильтровывает уже подтверждённую
// строку, счётчик не инкрементируется дважды.
// Подтвердить можно и ранее отклонённый платёж.
func (r *Repository) Confirm(ctx context.Context, userID, tournamentID int64) (int64, bool, error) {
	query := `
		WITH upd AS (
			UPDATE payments
			SET status = 'confirmed', confirmed_at = NOW(), updated_at = NOW()
			WHERE user_id = $1 AND tournament_id = $2 AND status <> 'confirmed'
			RETURNING tournament_id, amount
		)
		UPDATE tournaments t
		SET confirmed_count = confirmed_count + 1, updated_at = NOW()
		FROM upd
		WHERE t.id = upd.tournament_id
		RETURNING upd.amount`

	var amount int64
	err := r.pool.QueryRow(ctx, query, userID, tournamentID).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, common.StoreError("подтверждение платежа", err)
	}
	return amount, true, nil
}

// Decline отклоняет ожидающий платёж. Подтверждённую запись не трогает,
// счётчики турнира не меняет. Отклонённый платёж не блокирует
// последующую переподачу.
func (r *Repository) Decline(ctx context.Context, userID, tournamentID int64) (int64, bool, error) {
	query := `
		UPDATE payments
		SET status = 'declined', updated_at = NOW()
		WHERE user_id = $1 AND tournament_id = $2 AND status = 'pending'
		RETURNING amount`

	var amount int64
	err := r.pool.QueryRow(ctx, query, userID, tournamentID).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, common.StoreError("отклонение платежа", err)
	}
	return amount, true, nil
}

// HasConfirmed — авторизационная проверка допуска: есть ли у пары
// (игрок, турнир) подтверждённый платёж.
func (r *Repository) HasConfirmed(ctx context.Context, userID, tournamentID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(
		SELECT 1 FROM payments
		WHERE user_id = $1 AND tournament_id = $2 AND status = 'confirmed')`

	err := r.pool.QueryRow(ctx, query, userID, tournamentID).Scan(&exists)
	if err != nil {
		return false, common.StoreError("проверка платежа", err)
	}
	return exists, nil
}

// GetByPair возвращает платёж пары (игрок, турнир).
func (r *Repository) GetByPair(ctx context.Context, userID, tournamentID int64) (*Payment, error) {
	query := `
		SELECT id, user_id, tournament_id, amount, utr, status, confirmed_at, created_at, updated_at
		FROM payments
		WHERE user_id = $1 AND tournament_id = $2`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, userID, tournamentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.StoreError("получение платежа", err)
	}
	return p, nil
}

// ListPending возвращает все ожидающие решения платежи, старые первыми,
// с данными игрока и турнира для операторского списка.
func (r *Repository) ListPending(ctx context.Context) ([]PendingEntry, error) {
	query := `
		SELECT p.user_id, pl.username, pl.first_name, t.code, t.name, p.amount, p.utr, p.created_at
		FROM payments p
		JOIN players pl ON pl.user_id = p.user_id
		JOIN tournaments t ON t.id = p.tournament_id
		WHERE p.status = 'pending'
		ORDER BY p.created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, common.StoreError("список ожидающих платежей", err)
	}
	defer rows.Close()

	var entries []PendingEntry
	for rows.Next() {
		var e PendingEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.FirstName,
			&e.TournamentCode, &e.TournamentName, &e.Amount, &e.UTR, &e.CreatedAt); err != nil {
			return nil, common.StoreError("чтение ожидающего платежа", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreError("список ожидающих платежей", err)
	}
	return entries, nil
}

// Summarize собирает финансовую сводку с начала периода.
// Выручка считается по таблице payments — источнику истины,
// а не по денормализованным счётчикам.
func (r *Repository) Summarize(ctx context.Context, since time.Time) (*FinancialSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE status = 'confirmed' AND confirmed_at >= $1), 0),
			COUNT(*) FILTER (WHERE status = 'confirmed' AND confirmed_at >= $1),
			COUNT(*) FILTER (WHERE status = 'pending')
		FROM payments`

	s := &FinancialSummary{Since: since}
	err := r.pool.QueryRow(ctx, query, since).Scan(&s.Revenue, &s.Confirmed, &s.Pending)
	if err != nil {
		return nil, common.StoreError("финансовая сводка", err)
	}
	return s, nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.UserID, &p.TournamentID, &p.Amount, &p.UTR,
		&p.Status, &p.ConfirmedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
