// Package admission — repository.go содержит атомарные операции посадки.
// Посадка в ростер и изменение счётчиков — один CTE-statement:
// сбой или конкурентный вызов между под-записями невозможны по построению.
package admission

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nomercyzone.in/tournament-bot/internal/common"
)

// Repository выполняет атомарные операции допуска.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий допуска.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const joinPaidQuery = `
	WITH ins AS (
		INSERT INTO tournament_participants (tournament_id, user_id, via_free_entry)
		SELECT t.id, $1, false
		FROM tournaments t
		WHERE t.id = $2
		  AND t.status IN ('upcoming', 'live')
		  AND EXISTS (
			SELECT 1 FROM payments p
			WHERE p.user_id = $1 AND p.tournament_id = $2 AND p.status = 'confirmed')
		ON CONFLICT DO NOTHING
		RETURNING tournament_id
	)
	UPDATE players
	SET tournaments_joined = tournaments_joined + 1, updated_at = NOW()
	WHERE user_id = $1 AND EXISTS (SELECT 1 FROM ins)`

// Списание кредита — ведущая часть statement'а: при захвате блокировки
// строки игрока условие free_entries > 0 перепроверяется, и из двух
// одновременных бесплатных посадок кредит достаётся ровно одной.
// Вставка в ростер питается только строками списания; дубликат по PK
// откатывает statement целиком, и кредит возвращается.
const joinFreeQuery = `
	WITH debit AS (
		UPDATE players
		SET free_entries = free_entries - 1,
		    tournaments_joined = tournaments_joined + 1,
		    updated_at = NOW()
		WHERE user_id = $1
		  AND free_entries > 0
		  AND EXISTS (
			SELECT 1 FROM tournaments t
			WHERE t.id = $2 AND t.status IN ('upcoming', 'live'))
		  AND NOT EXISTS (
			SELECT 1 FROM tournament_participants tp
			WHERE tp.tournament_id = $2 AND tp.user_id = $1)
		RETURNING user_id
	)
	INSERT INTO tournament_participants (tournament_id, user_id, via_free_entry)
	SELECT $2, user_id, true FROM debit`

// JoinPaid сажает игрока с подтверждённым платежом. Statement сам
// перепроверяет все условия (турнир открыт, платёж подтверждён,
// игрок ещё не в ростере): конкурентные вызовы сериализуются
// в хранилище, ON CONFLICT гасит дубликаты.
func (r *Repository) JoinPaid(ctx context.Context, userID, tournamentID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, joinPaidQuery, userID, tournamentID)
	if err != nil {
		return false, common.StoreError("платная посадка", err)
	}
	return tag.RowsAffected() > 0, nil
}

// JoinFree сажает игрока за бесплатный вход: списание кредита
// и вставка в ростер — в одном statement. Возвращает false,
// если кредита нет, турнир закрыт или игрок уже в ростере.
func (r *Repository) JoinFree(ctx context.Context, userID, tournamentID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, joinFreeQuery, userID, tournamentID)
	if err != nil {
		if isUniqueViolation(err) {
			// Конкурентный дубликат: вся операция откатилась,
			// кредит не тронут.
			return false, nil
		}
		return false, common.StoreError("бесплатная посадка", err)
	}
	return tag.RowsAffected() > 0, nil
}

// isUniqueViolation распознаёт нарушение первичного ключа ростера.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
