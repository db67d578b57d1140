package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	assert.Equal(t, PeriodToday, ParsePeriod("today"))
	assert.Equal(t, PeriodWeekly, ParsePeriod("weekly"))
	assert.Equal(t, PeriodMonthly, ParsePeriod("monthly"))
	assert.Equal(t, PeriodWeekly, ParsePeriod("  WEEKLY "))

	// Неизвестное значение схлопывается в today.
	assert.Equal(t, PeriodToday, ParsePeriod("yearly"))
	assert.Equal(t, PeriodToday, ParsePeriod(""))
}

func TestPeriodStart(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 15 сентября 2026, 14:30 IST
	now := time.Date(2026, 9, 15, 14, 30, 0, 0, ist)

	today := PeriodStart(PeriodToday, now, ist)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, ist), today)

	weekly := PeriodStart(PeriodWeekly, now, ist)
	assert.Equal(t, time.Date(2026, 9, 8, 0, 0, 0, 0, ist), weekly)

	monthly := PeriodStart(PeriodMonthly, now, ist)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, ist), monthly)
}

func TestPeriodStartCrossesDateLine(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 1 сентября 01:00 IST — это ещё 31 августа по UTC.
	// Границы считаются в опорном поясе, не в UTC.
	now := time.Date(2026, 8, 31, 19, 30, 0, 0, time.UTC) // = 01:00 IST 1 сентября

	today := PeriodStart(PeriodToday, now, ist)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, ist), today)

	monthly := PeriodStart(PeriodMonthly, now, ist)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, ist), monthly)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "₹1500", FormatCurrency(1500))
	assert.Equal(t, "₹0", FormatCurrency(0))
}

func TestFormatDateTime(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	ts := time.Date(2026, 9, 28, 15, 0, 0, 0, time.UTC) // 20:30 IST
	assert.Equal(t, "28/09/2026 20:30", FormatDateTime(ts, ist))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("123456789012"))
	assert.True(t, IsNumeric("0"))

	assert.False(t, IsNumeric(""))
	assert.False(t, IsNumeric("12a34"))
	assert.False(t, IsNumeric("12 34"))
	assert.False(t, IsNumeric("-123"))
	assert.False(t, IsNumeric("१२३")) // не-ASCII цифры не принимаем
}
