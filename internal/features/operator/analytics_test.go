package operator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nomercyzone.in/tournament-bot/internal/features/tournaments"
)

func TestProfitEstimate(t *testing.T) {
	collection, profit := profitEstimate(tournaments.CategoryStats{
		Category:        tournaments.CategorySquad,
		AvgParticipants: 10,
		AvgEntryFee:     200,
	})
	assert.InDelta(t, 2000.0, collection, 0.001)
	// Squad отдаёт 80% сборов в призы.
	assert.InDelta(t, 400.0, profit, 0.001)

	_, profit = profitEstimate(tournaments.CategoryStats{
		Category:        tournaments.CategorySolo,
		AvgParticipants: 10,
		AvgEntryFee:     100,
	})
	assert.InDelta(t, 300.0, profit, 0.001)
}

func TestAnalyticsText(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+30*60)
	now := time.Date(2026, 9, 28, 14, 0, 0, 0, loc)
	slot := time.Date(2026, 9, 28, 19, 0, 0, 0, loc)

	text := analyticsText([]tournaments.CategoryStats{
		{Category: tournaments.CategorySolo, Hosted: 12, Completed: 9,
			AvgParticipants: 18.4, AvgEntryFee: 55, AIHosted: 3, AvgConfidence: 0.92},
		{Category: tournaments.CategorySquad, Hosted: 4, Completed: 4,
			AvgParticipants: 10, AvgEntryFee: 200},
	}, now, slot, loc)

	assert.Contains(t, text, "SOLO TOURNAMENTS")
	assert.Contains(t, text, "Hosted: 12 (9 completed)")
	assert.Contains(t, text, "AI-hosted: 3 (avg confidence 92%)")
	assert.Contains(t, text, "Current Time: 14:00 IST")
	assert.Contains(t, text, "28/09/2026 19:00")
	// У squad нет AI-турниров — строка уверенности не печатается.
	assert.Equal(t, 1, strings.Count(text, "AI-hosted"))
}
