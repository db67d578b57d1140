// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: работа с опорным часовым поясом, форматирование сумм,
// расчёт границ финансовых периодов.
package common

import (
	"fmt"
	"strings"
	"time"
)

// Период финансовой сводки.
type Period string

const (
	PeriodToday   Period = "today"   // С полуночи опорного пояса
	PeriodWeekly  Period = "weekly"  // Скользящие 7 дней
	PeriodMonthly Period = "monthly" // С первого числа текущего месяца
)

// ParsePeriod разбирает строку периода. Неизвестное значение = today
// (так вёл себя исходный отчёт).
func ParsePeriod(s string) Period {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodWeekly:
		return PeriodWeekly
	case PeriodMonthly:
		return PeriodMonthly
	default:
		return PeriodToday
	}
}

// PeriodStart возвращает начало периода относительно now в поясе loc.
//
// Правила:
//   - today   → полночь текущего дня
//   - weekly  → ровно 7 суток назад от полуночи текущего дня
//   - monthly → полночь первого числа текущего месяца
func PeriodStart(p Period, now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	switch p {
	case PeriodWeekly:
		return midnight.AddDate(0, 0, -7)
	case PeriodMonthly:
		return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return midnight
	}
}

// FormatCurrency форматирует сумму в рупиях.
// Пример: FormatCurrency(1500) → "₹1500"
func FormatCurrency(amount int64) string {
	return fmt.Sprintf("₹%d", amount)
}

// FormatDateTime форматирует время в формат "02/01/2006 15:04" в поясе loc.
// Используется для отображения времени платежей и турниров.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02/01/2006 15:04")
}

// IsNumeric сообщает, состоит ли строка только из ASCII-цифр.
// Пустая строка — не число.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
