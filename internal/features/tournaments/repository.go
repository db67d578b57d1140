// Package tournaments — repository.go содержит SQL-запросы для таблиц
// tournaments и tournament_participants.
package tournaments

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nomercyzone.in/tournament-bot/internal/common"
)

// Repository предоставляет доступ к турнирам.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий турниров.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// tournamentColumns — список колонок с денормализованным размером ростера.
// Продолжение запроса после конкатенации обязано начинаться с новой строки,
// иначе идентификатор склеится с ключевым словом.
const tournamentColumns = `
	t.id, t.code, t.name, t.category, t.scheduled_at, t.map_name,
	t.entry_fee, t.prize, t.status, t.confirmed_count,
	t.room_id, t.room_password, t.ai_generated, t.ai_confidence,
	(SELECT COUNT(*) FROM tournament_participants p WHERE p.tournament_id = t.id),
	t.created_at, t.updated_at`

const getByCodeQuery = `SELECT` + tournamentColumns + `
	FROM tournaments t WHERE t.code = $1`

const listActiveQuery = `SELECT` + tournamentColumns + `
	FROM tournaments t
	WHERE t.status IN ('upcoming', 'live')
	ORDER BY t.created_at ASC`

const publishRoomQuery = `
	UPDATE tournaments t
	SET room_id = $2, room_password = $3, status = 'live', updated_at = NOW()
	WHERE t.code = $1 AND t.status IN ('upcoming', 'live')
	RETURNING` + tournamentColumns

func scanTournament(row pgx.Row) (*Tournament, error) {
	var t Tournament
	var prize []byte
	err := row.Scan(
		&t.ID, &t.Code, &t.Name, &t.Category, &t.ScheduledAt, &t.MapName,
		&t.EntryFee, &prize, &t.Status, &t.ConfirmedCount,
		&t.RoomID, &t.RoomPassword, &t.AIGenerated, &t.AIConfidence,
		&t.Participants, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(prize) > 0 {
		if err := json.Unmarshal(prize, &t.Prize); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// Create сохраняет новый турнир и заполняет ID и временные метки.
func (r *Repository) Create(ctx context.Context, t *Tournament) error {
	prize, err := json.Marshal(t.Prize)
	if err != nil {
		return common.StoreError("сериализация призовой структуры", err)
	}

	query := `
		INSERT INTO tournaments
			(code, name, category, scheduled_at, map_name, entry_fee, prize,
			 status, ai_generated, ai_confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err = r.pool.QueryRow(ctx, query,
		t.Code, t.Name, t.Category, t.ScheduledAt, t.MapName, t.EntryFee,
		string(prize), StatusUpcoming, t.AIGenerated, t.AIConfidence,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return common.StoreError("создание турнира", err)
	}
	t.Status = StatusUpcoming
	return nil
}

// GetByCode возвращает турнир по публичному коду.
func (r *Repository) GetByCode(ctx context.Context, code string) (*Tournament, error) {
	t, err := scanTournament(r.pool.QueryRow(ctx, getByCodeQuery, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrTournamentNotFound
	}
	if err != nil {
		return nil, common.StoreError("получение турнира", err)
	}
	return t, nil
}

// TournamentCodeExists проверяет занятость кода (порт генератора идентификаторов).
func (r *Repository) TournamentCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM tournaments WHERE code = $1)`

	err := r.pool.QueryRow(ctx, query, code).Scan(&exists)
	if err != nil {
		return false, common.StoreError("проверка кода турнира", err)
	}
	return exists, nil
}

// ListActive возвращает открытые турниры (upcoming/live),
// упорядоченные по времени создания — стабильный порядок для меню.
func (r *Repository) ListActive(ctx context.Context) ([]*Tournament, error) {
	rows, err := r.pool.Query(ctx, listActiveQuery)
	if err != nil {
		return nil, common.StoreError("список активных турниров", err)
	}
	defer rows.Close()

	var result []*Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, common.StoreError("чтение турнира", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreError("список активных турниров", err)
	}
	return result, nil
}

// PublishRoom атомарно записывает данные комнаты и переводит турнир в live.
// Один UPDATE с условием по статусу: завершённый или отменённый турнир
// не принимает комнату, повторный вызов по live-турниру обновляет данные.
func (r *Repository) PublishRoom(ctx context.Context, code, roomID, password string) (*Tournament, error) {
	t, err := scanTournament(r.pool.QueryRow(ctx, publishRoomQuery, code, roomID, password))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrTournamentNotFound
	}
	if err != nil {
		return nil, common.StoreError("публикация комнаты", err)
	}
	return t, nil
}

// Finish переводит открытый турнир в терминальное состояние
// (completed или cancelled). Возвращает false, если турнир
// не найден или уже завершён.
func (r *Repository) Finish(ctx context.Context, code string, status Status) (bool, error) {
	query := `
		UPDATE tournaments
		SET status = $2, updated_at = NOW()
		WHERE code = $1 AND status IN ('upcoming', 'live')`

	tag, err := r.pool.Exec(ctx, query, code, status)
	if err != nil {
		return false, common.StoreError("завершение турнира", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete безусловно удаляет турнир вместе с ростером.
// Платежи не трогаем: они остаются для аудита.
func (r *Repository) Delete(ctx context.Context, code string) (bool, error) {
	query := `DELETE FROM tournaments WHERE code = $1`

	tag, err := r.pool.Exec(ctx, query, code)
	if err != nil {
		return false, common.StoreError("удаление турнира", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveParticipant убирает игрока из ростера. Статус платежа не меняется,
// возврата средств нет.
func (r *Repository) RemoveParticipant(ctx context.Context, tournamentID, userID int64) (bool, error) {
	query := `DELETE FROM tournament_participants WHERE tournament_id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, tournamentID, userID)
	if err != nil {
		return false, common.StoreError("удаление участника", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RosterEntry — строка ростера для операторского списка и рассылок.
type RosterEntry struct {
	UserID    int64
	Username  string
	FirstName string
	FreeEntry bool // Зашёл по бесплатному входу
}

// Roster возвращает снимок ростера на момент вызова, в порядке вступления.
func (r *Repository) Roster(ctx context.Context, tournamentID int64) ([]RosterEntry, error) {
	query := `
		SELECT p.user_id, pl.username, pl.first_name, p.via_free_entry
		FROM tournament_participants p
		JOIN players pl ON pl.user_id = p.user_id
		WHERE p.tournament_id = $1
		ORDER BY p.joined_at ASC`

	rows, err := r.pool.Query(ctx, query, tournamentID)
	if err != nil {
		return nil, common.StoreError("чтение ростера", err)
	}
	defer rows.Close()

	var roster []RosterEntry
	for rows.Next() {
		var e RosterEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.FirstName, &e.FreeEntry); err != nil {
			return nil, common.StoreError("чтение ростера", err)
		}
		roster = append(roster, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreError("чтение ростера", err)
	}
	return roster, nil
}

// CategoryStats — исторический агрегат по категории за всё время.
type CategoryStats struct {
	Category        Category
	Hosted          int64
	Completed       int64
	AvgParticipants float64
	AvgEntryFee     float64
	AIHosted        int64
	AvgConfidence   float64 // Средняя уверенность по AI-турнирам, 0..1
}

// StatsByCategory собирает историческую сводку для аналитики оператора.
func (r *Repository) StatsByCategory(ctx context.Context) ([]CategoryStats, error) {
	query := `
		SELECT t.category,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE t.status = 'completed'),
		       COALESCE(AVG((SELECT COUNT(*) FROM tournament_participants p
		                     WHERE p.tournament_id = t.id)), 0),
		       COALESCE(AVG(t.entry_fee), 0),
		       COUNT(*) FILTER (WHERE t.ai_generated),
		       COALESCE(AVG(t.ai_confidence) FILTER (WHERE t.ai_generated), 0)
		FROM tournaments t
		GROUP BY t.category
		ORDER BY t.category`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, common.StoreError("сводка по категориям", err)
	}
	defer rows.Close()

	var stats []CategoryStats
	for rows.Next() {
		var s CategoryStats
		if err := rows.Scan(&s.Category, &s.Hosted, &s.Completed,
			&s.AvgParticipants, &s.AvgEntryFee, &s.AIHosted, &s.AvgConfidence); err != nil {
			return nil, common.StoreError("сводка по категориям", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreError("сводка по категориям", err)
	}
	return stats, nil
}

// IsParticipant проверяет членство игрока в ростере.
func (r *Repository) IsParticipant(ctx context.Context, tournamentID, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(
		SELECT 1 FROM tournament_participants WHERE tournament_id = $1 AND user_id = $2)`

	err := r.pool.QueryRow(ctx, query, tournamentID, userID).Scan(&exists)
	if err != nil {
		return false, common.StoreError("проверка участия", err)
	}
	return exists, nil
}
