package admission

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

// Бесплатная посадка строится от списания: вставка в ростер питается
// только строками CTE debit, без списанного кредита посадки не будет.
// ON CONFLICT здесь намеренно отсутствует: конкурентный дубликат
// обязан откатить statement целиком вместе со списанием.
func TestJoinFreeSeatGatedOnDebit(t *testing.T) {
	assert.Contains(t, joinFreeQuery, "WITH debit AS")
	assert.Contains(t, joinFreeQuery, "FROM debit")
	assert.Contains(t, joinFreeQuery, "free_entries > 0")
	assert.NotContains(t, joinFreeQuery, "ON CONFLICT")
}

// Платная посадка не трогает кредиты: счётчик игрока растёт только
// при фактической вставке.
func TestJoinPaidCounterGatedOnInsert(t *testing.T) {
	assert.Contains(t, joinPaidQuery, "EXISTS (SELECT 1 FROM ins)")
	assert.NotContains(t, joinPaidQuery, "free_entries")
}

func TestUniqueViolationDetection(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}
