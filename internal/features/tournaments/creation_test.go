package tournaments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomercyzone.in/tournament-bot/internal/common"
)

func newTestFlow() (*CreationFlow, *fakeStore) {
	svc, store := newTestService()
	return NewCreationFlow(svc), store
}

func TestCreationFlow_FullWalk(t *testing.T) {
	flow, store := newTestFlow()
	ctx := context.Background()
	const op = int64(1)

	prompt, err := flow.Start(op, "squad")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Step 1/6")
	assert.True(t, flow.Active(op))

	steps := []struct {
		input      string
		nextPrompt string
	}{
		{"ROYALE RUMBLE", "Step 2/6"},
		{"2026-09-28", "Step 3/6"},
		{"20:30", "Step 4/6"},
		{"200", "Step 5/6"},
		{"Erangel", "Step 6/6"},
	}
	for _, s := range steps {
		reply, created, err := flow.Advance(ctx, op, s.input)
		require.NoError(t, err)
		require.Nil(t, created)
		assert.Contains(t, reply, s.nextPrompt)
	}

	reply, created, err := flow.Advance(ctx, op, "1")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Empty(t, reply)

	assert.Equal(t, "ROYALE RUMBLE", created.Name)
	assert.Equal(t, CategorySquad, created.Category)
	assert.Equal(t, int64(200), created.EntryFee)
	assert.Equal(t, PrizeRankBased, created.Prize.Type)
	assert.Contains(t, store.byCode, created.Code)

	// Диалог завершён и очищен.
	assert.False(t, flow.Active(op))
}

func TestCreationFlow_InvalidInputDoesNotAdvance(t *testing.T) {
	flow, _ := newTestFlow()
	ctx := context.Background()
	const op = int64(1)

	_, err := flow.Start(op, "solo")
	require.NoError(t, err)

	_, _, err = flow.Advance(ctx, op, "SOLO SUPREMACY")
	require.NoError(t, err)

	// Неверная дата: остаёмся на шаге даты.
	reply, created, err := flow.Advance(ctx, op, "28/09/2026")
	require.NoError(t, err)
	assert.Nil(t, created)
	assert.Contains(t, reply, "Invalid date format")

	reply, _, err = flow.Advance(ctx, op, "2026-09-28")
	require.NoError(t, err)
	assert.Contains(t, reply, "Step 3/6")

	// Неверное время.
	reply, _, err = flow.Advance(ctx, op, "8 pm")
	require.NoError(t, err)
	assert.Contains(t, reply, "Invalid time format")

	_, _, err = flow.Advance(ctx, op, "20:30")
	require.NoError(t, err)

	// Неверный взнос.
	reply, _, err = flow.Advance(ctx, op, "-5")
	require.NoError(t, err)
	assert.Contains(t, reply, "Invalid entry fee")

	reply, _, err = flow.Advance(ctx, op, "abc")
	require.NoError(t, err)
	assert.Contains(t, reply, "Invalid entry fee")
}

func TestCreationFlow_BadCategoryRejectedAtStart(t *testing.T) {
	flow, _ := newTestFlow()

	_, err := flow.Start(1, "trio")
	assert.ErrorIs(t, err, common.ErrInvalidCategory)
	assert.False(t, flow.Active(1))
}

func TestCreationFlow_BadPrizeChoice(t *testing.T) {
	flow, _ := newTestFlow()
	ctx := context.Background()
	const op = int64(1)

	_, err := flow.Start(op, "duo")
	require.NoError(t, err)
	for _, input := range []string{"DUO DOMINATION", "2026-09-28", "20:30", "80", "Livik"} {
		_, _, err := flow.Advance(ctx, op, input)
		require.NoError(t, err)
	}

	reply, created, err := flow.Advance(ctx, op, "4")
	require.NoError(t, err)
	assert.Nil(t, created)
	assert.Contains(t, reply, "1, 2 or 3")
}

func TestCreationFlow_ConcurrentRepliesKeepStateConsistent(t *testing.T) {
	flow, _ := newTestFlow()
	ctx := context.Background()
	const op = int64(1)

	_, err := flow.Start(op, "solo")
	require.NoError(t, err)

	// Несколько быстрых ответов обрабатываются на разных горутинах.
	// Ровно один продвигает шаг имени; остальные попадают на шаг даты
	// и отклоняются как неверный формат.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = flow.Advance(ctx, op, "SOLO SUPREMACY")
		}()
	}
	wg.Wait()

	flow.mu.RLock()
	st := flow.states[op]
	flow.mu.RUnlock()
	require.NotNil(t, st)
	assert.Equal(t, stepDate, st.Step)
	assert.Equal(t, "SOLO SUPREMACY", st.Spec.Name)

	// Диалог продолжается как обычно.
	reply, _, err := flow.Advance(ctx, op, "2026-09-28")
	require.NoError(t, err)
	assert.Contains(t, reply, "Step 3/6")
}

func TestCreationFlow_ExpiredStateIsDropped(t *testing.T) {
	flow, _ := newTestFlow()
	const op = int64(1)

	_, err := flow.Start(op, "solo")
	require.NoError(t, err)

	flow.mu.Lock()
	flow.states[op].ExpiresAt = time.Now().Add(-time.Second)
	flow.mu.Unlock()

	assert.False(t, flow.Active(op))

	reply, created, err := flow.Advance(context.Background(), op, "anything")
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.Nil(t, created)
}

func TestCreationFlow_Cancel(t *testing.T) {
	flow, _ := newTestFlow()

	_, err := flow.Start(1, "solo")
	require.NoError(t, err)
	flow.Cancel(1)
	assert.False(t, flow.Active(1))
}

func TestCreationFlow_IsolatedPerOperator(t *testing.T) {
	flow, _ := newTestFlow()
	ctx := context.Background()

	_, err := flow.Start(1, "solo")
	require.NoError(t, err)
	_, err = flow.Start(2, "squad")
	require.NoError(t, err)

	_, _, err = flow.Advance(ctx, 1, "SOLO SUPREMACY")
	require.NoError(t, err)

	// Второй оператор всё ещё на первом шаге.
	reply, _, err := flow.Advance(ctx, 2, "TEAM TITANS")
	require.NoError(t, err)
	assert.Contains(t, reply, "Step 2/6")
}
