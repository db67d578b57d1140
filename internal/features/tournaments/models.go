// Package tournaments управляет жизненным циклом турниров:
// upcoming → live → completed/cancelled.
// Здесь же — призовые шаблоны и категории из регламента сообщества.
package tournaments

import (
	"fmt"
	"time"

	"nomercyzone.in/tournament-bot/internal/common"
)

// Status — состояние турнира. Переходы монотонны:
// из live нельзя вернуться в upcoming, терминальные состояния не мутируются.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Category — размер команды.
type Category string

const (
	CategorySolo  Category = "solo"
	CategoryDuo   Category = "duo"
	CategorySquad Category = "squad"
)

// ParseCategory проверяет строку против фиксированного перечня категорий.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategorySolo, CategoryDuo, CategorySquad:
		return Category(s), nil
	}
	return "", common.ErrInvalidCategory
}

// PrizeType — вид призовой структуры.
type PrizeType string

const (
	PrizeRankBased PrizeType = "rank_based"
	PrizeKillBased PrizeType = "kill_based"
	PrizeFixed     PrizeType = "fixed"
)

// PrizeStructure — тегированный вариант призовой структуры.
// Заполнены только поля, относящиеся к Type; хранится как jsonb.
type PrizeStructure struct {
	Type    PrizeType `json:"type"`
	First   int64     `json:"first,omitempty"`    // rank_based: 1-е место
	Second  int64     `json:"second,omitempty"`   // rank_based: 2-е место
	Third   int64     `json:"third,omitempty"`    // rank_based: 3-е место
	PerKill int64     `json:"per_kill,omitempty"` // kill_based: за каждый килл
	Bonus   int64     `json:"bonus,omitempty"`    // kill_based: бонус победителю
	Winner  int64     `json:"winner,omitempty"`   // fixed: победитель забирает всё
}

// Summary возвращает человекочитаемую строку для анонсов.
func (p PrizeStructure) Summary() string {
	switch p.Type {
	case PrizeKillBased:
		return fmt.Sprintf("%s per kill + %s bonus",
			common.FormatCurrency(p.PerKill), common.FormatCurrency(p.Bonus))
	case PrizeFixed:
		return fmt.Sprintf("Winner takes all: %s", common.FormatCurrency(p.Winner))
	default:
		return fmt.Sprintf("#1: %s | #2: %s | #3: %s",
			common.FormatCurrency(p.First), common.FormatCurrency(p.Second), common.FormatCurrency(p.Third))
	}
}

// Maps — пул карт для автоподбора при быстром создании.
var Maps = []string{"Erangel", "Miramar", "Sanhok", "Livik", "Karakin"}

// DefaultEntryFee — стандартный взнос по категории.
func DefaultEntryFee(c Category) int64 {
	switch c {
	case CategorySolo:
		return 50
	case CategoryDuo:
		return 80
	default:
		return 200
	}
}

// DefaultPrize — призовой шаблон по категории и типу.
func DefaultPrize(c Category, t PrizeType) PrizeStructure {
	switch c {
	case CategorySolo:
		switch t {
		case PrizeKillBased:
			return PrizeStructure{Type: t, PerKill: 25, Bonus: 200}
		case PrizeFixed:
			return PrizeStructure{Type: t, Winner: 500}
		default:
			return PrizeStructure{Type: PrizeRankBased, First: 300, Second: 150, Third: 50}
		}
	case CategoryDuo:
		switch t {
		case PrizeKillBased:
			return PrizeStructure{Type: t, PerKill: 15, Bonus: 300}
		case PrizeFixed:
			return PrizeStructure{Type: t, Winner: 1500}
		default:
			return PrizeStructure{Type: PrizeRankBased, First: 800, Second: 500, Third: 200}
		}
	default:
		switch t {
		case PrizeKillBased:
			return PrizeStructure{Type: t, PerKill: 10, Bonus: 500}
		case PrizeFixed:
			return PrizeStructure{Type: t, Winner: 2500}
		default:
			return PrizeStructure{Type: PrizeRankBased, First: 2000, Second: 1200, Third: 800}
		}
	}
}

// Tournament — запись турнира.
type Tournament struct {
	ID             int64          // Внутренний ID
	Code           string         // Короткий публичный код (6 символов A-Z0-9)
	Name           string         // Отображаемое название
	Category       Category       // solo / duo / squad
	ScheduledAt    time.Time      // Дата и время начала
	MapName        string         // Карта
	EntryFee       int64          // Взнос, в рупиях
	Prize          PrizeStructure // Призовая структура
	Status         Status         // Текущее состояние
	ConfirmedCount int64          // Сколько платежей подтверждено
	RoomID         string         // ID игровой комнаты (после droproom)
	RoomPassword   string         // Пароль комнаты
	AIGenerated    bool           // Создан по одобренному AI-предложению
	AIConfidence   float64        // Уверенность предложения, 0..1
	Participants   int64          // Размер ростера (денормализованный счётчик)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsOpen сообщает, принимает ли турнир участников и комнаты.
func (t *Tournament) IsOpen() bool {
	return t.Status == StatusUpcoming || t.Status == StatusLive
}
