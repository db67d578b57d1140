// Package players управляет игроками: регистрацией, банами, балансом
// и денормализованной историей платежей.
// models.go описывает структуры данных для работы с таблицей players.
package players

import "time"

// Player представляет игрока в базе данных.
// Запись создаётся при первом контакте с ботом и никогда не удаляется.
type Player struct {
	ID        int64  `db:"id"`         // Автоинкрементный ID записи в БД
	UserID    int64  `db:"user_id"`    // Telegram user ID (уникальный)
	Username  string `db:"username"`   // @username (может быть пустым)
	FirstName string `db:"first_name"` // Имя пользователя
	IsBanned  bool   `db:"is_banned"`  // Флаг бана: забаненный отвергается всеми мутациями кроме разбана
	Balance   int64  `db:"balance"`    // Баланс в минорных единицах (операторские начисления)

	// Реферальная механика
	ReferralCode string `db:"referral_code"` // Уникальный код вида REF123456
	FreeEntries  int64  `db:"free_entries"`  // Неиспользованные бесплатные входы (1 реферал = 1 вход)

	// Агрегаты участия
	TournamentsJoined int64 `db:"tournaments_joined"` // Сколько турниров сыграно
	TotalSpent        int64 `db:"total_spent"`        // Сумма подтверждённых взносов
	TotalEarned       int64 `db:"total_earned"`       // Сумма выигрышей

	// Денормализованная проекция платежей для быстрого показа истории.
	// Источник истины — таблица payments; массив может отставать.
	PaymentSummaries []PaymentSummary `db:"payment_summaries"`

	JoinedAt  time.Time `db:"joined_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PaymentSummary — краткая запись о платеже внутри players.payment_summaries.
type PaymentSummary struct {
	TournamentCode string    `json:"tournament_code"`
	TournamentName string    `json:"tournament_name"`
	Amount         int64     `json:"amount"`
	UTR            string    `json:"utr"`
	Status         string    `json:"status"` // pending / confirmed / declined
	CreatedAt      time.Time `json:"created_at"`
}

// DisplayName возвращает отображаемое имя игрока.
// Если есть @username — возвращает его, иначе имя.
func (p *Player) DisplayName() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	return p.FirstName
}
