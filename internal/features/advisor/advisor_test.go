package advisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomercyzone.in/tournament-bot/internal/common"
	"nomercyzone.in/tournament-bot/internal/features/tournaments"
)

func TestSuggest_KnownCategories(t *testing.T) {
	h := NewHeuristic(time.UTC)

	for _, c := range []tournaments.Category{
		tournaments.CategorySolo, tournaments.CategoryDuo, tournaments.CategorySquad,
	} {
		s, err := h.Suggest(context.Background(), c)
		require.NoError(t, err)

		assert.Equal(t, c, s.Category)
		assert.NotEmpty(t, s.Name)
		assert.Contains(t, tournaments.Maps, s.MapName)
		assert.Positive(t, s.EntryFee)
		assert.Greater(t, s.Confidence, 0.0)
		assert.LessOrEqual(t, s.Confidence, 1.0)
		assert.NotEmpty(t, s.Reasoning)
	}
}

func TestSuggest_BadCategory(t *testing.T) {
	h := NewHeuristic(time.UTC)

	_, err := h.Suggest(context.Background(), "trio")
	assert.ErrorIs(t, err, common.ErrInvalidCategory)
}
