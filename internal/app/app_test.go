package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Удаление турнира каскадом чистит только ростер. Платежи на tournaments
// не ссылаются и остаются доступными для аудита по паре
// (user_id, tournament_id) даже после удаления турнира.
func TestPaymentsSurviveTournamentDeletion(t *testing.T) {
	assert.NotContains(t, migration003Payments, "REFERENCES tournaments")
	assert.Contains(t, migration002Tournaments, "REFERENCES tournaments(id) ON DELETE CASCADE")
}
