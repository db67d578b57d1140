// Package operator — analytics.go формирует сводку /aianalytics:
// исторические агрегаты по категориям с оценкой прибыли.
package operator

import (
	"fmt"
	"strings"
	"time"

	"nomercyzone.in/tournament-bot/internal/common"
	"nomercyzone.in/tournament-bot/internal/features/tournaments"
)

// payoutShare — доля сборов, уходящая в призовой фонд категории.
var payoutShare = map[tournaments.Category]float64{
	tournaments.CategorySolo:  0.70,
	tournaments.CategoryDuo:   0.75,
	tournaments.CategorySquad: 0.80,
}

// profitEstimate оценивает средний сбор и прибыль одного турнира
// категории по историческим средним.
func profitEstimate(s tournaments.CategoryStats) (collection, profit float64) {
	share, ok := payoutShare[s.Category]
	if !ok {
		share = 0.70
	}
	collection = s.AvgParticipants * s.AvgEntryFee
	return collection, collection * (1 - share)
}

func categoryBadge(c tournaments.Category) string {
	switch c {
	case tournaments.CategorySolo:
		return "🧍"
	case tournaments.CategoryDuo:
		return "👥"
	default:
		return "👨‍👩‍👧‍👦"
	}
}

// analyticsText собирает текст аналитической сводки.
func analyticsText(stats []tournaments.CategoryStats, now, slot time.Time, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString("🤖 AI ANALYTICS DASHBOARD\n\n")
	sb.WriteString("🕒 Current Time: " + now.In(loc).Format("15:04 MST") + "\n")
	sb.WriteString("⏰ Next Prime Slot: " + common.FormatDateTime(slot, loc) + "\n\n")

	for _, s := range stats {
		collection, profit := profitEstimate(s)
		sb.WriteString(fmt.Sprintf(
			"%s %s TOURNAMENTS:\n"+
				"• Hosted: %d (%d completed)\n"+
				"• Avg Participants: %.1f\n"+
				"• Avg Entry Fee: %s\n"+
				"• Est. Collection: ₹%.0f | Est. Profit: ₹%.0f\n",
			categoryBadge(s.Category), strings.ToUpper(string(s.Category)),
			s.Hosted, s.Completed, s.AvgParticipants,
			common.FormatCurrency(int64(s.AvgEntryFee)),
			collection, profit))
		if s.AIHosted > 0 {
			sb.WriteString(fmt.Sprintf("• AI-hosted: %d (avg confidence %.0f%%)\n",
				s.AIHosted, s.AvgConfidence*100))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("🧠 Request a fresh config with /aihost <type>.")
	return sb.String()
}
