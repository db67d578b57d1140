// Package referrals реализует реферальную программу:
// 1 приглашённый игрок = 1 бесплатный вход в турнир для пригласившего.
package referrals

import "time"

// Referral — факт приглашения. Один приглашённый засчитывается
// ровно один раз, независимо от того, чей код он активировал.
type Referral struct {
	ID             int64     // Уникальный ID записи
	ReferrerUserID int64     // Кто пригласил
	RefereeUserID  int64     // Кого пригласили
	Code           string    // Активированный код (REF + 6 цифр)
	CreatedAt      time.Time // Когда активирован
}

// Stats — сводка по рефералам игрока для команды /refer.
type Stats struct {
	Invited     int64 // Сколько игроков привёл
	FreeEntries int64 // Сколько бесплатных входов осталось
}
