// Package payments реализует сверку платежей: подача UTR игроком,
// ручное подтверждение или отклонение оператором.
// Статусы: pending → confirmed | declined; confirmed — терминальный.
package payments

import "time"

// Status — состояние платежа.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDeclined  Status = "declined"
)

// Payment — запись о заявленном банковском переводе.
// Идентичность составная: (user_id, tournament_id); на пару существует
// не более одной записи, переподача перезаписывает её на месте,
// пока платёж не подтверждён.
type Payment struct {
	ID             int64      // Внутренний ID
	UserID         int64      // Telegram user ID плательщика
	TournamentID   int64      // Внутренний ID турнира
	TournamentCode string     // Публичный код турнира
	Amount         int64      // Заявленная сумма, в рупиях
	UTR            string     // Банковский референс перевода
	Status         Status     // Текущее состояние
	ConfirmedAt    *time.Time // Момент подтверждения оператором
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PendingEntry — строка списка ожидающих решений для оператора.
type PendingEntry struct {
	UserID         int64
	Username       string
	FirstName      string
	TournamentCode string
	TournamentName string
	Amount         int64
	UTR            string
	CreatedAt      time.Time
}

// VerificationRequest — payload запроса на ручную проверку перевода,
// адресованный оператору.
type VerificationRequest struct {
	UserID         int64
	Username       string
	TournamentCode string
	TournamentName string
	Amount         int64
	UTR            string
}

// FinancialSummary — финансовая сводка за период для /datavault.
type FinancialSummary struct {
	Since     time.Time // Начало периода
	Revenue   int64     // Сумма подтверждённых платежей
	Confirmed int64     // Число подтверждённых платежей
	Pending   int64     // Сколько решений ещё ждёт оператора
}
