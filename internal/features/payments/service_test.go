package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomercyzone.in/tournament-bot/internal/common"
	"nomercyzone.in/tournament-bot/internal/features/players"
	"nomercyzone.in/tournament-bot/internal/features/tournaments"
)

type pairKey struct {
	userID       int64
	tournamentID int64
}

// fakeStore воспроизводит семантику одиночных statements репозитория:
// upsert с фильтром по confirmed, условный confirm с инкрементом
// счётчика турнира.
type fakeStore struct {
	payments       map[pairKey]*Payment
	confirmedCount map[int64]int64
	nextID         int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		payments:       make(map[pairKey]*Payment),
		confirmedCount: make(map[int64]int64),
	}
}

func (f *fakeStore) Submit(ctx context.Context, userID, tournamentID int64, amount int64, utr string) (*Payment, error) {
	key := pairKey{userID, tournamentID}
	if existing, ok := f.payments[key]; ok {
		if existing.Status == StatusConfirmed {
			return nil, common.ErrAlreadyConfirmed
		}
		existing.Amount = amount
		existing.UTR = utr
		existing.Status = StatusPending
		existing.UpdatedAt = time.Now()
		cp := *existing
		return &cp, nil
	}
	f.nextID++
	p := &Payment{
		ID:           f.nextID,
		UserID:       userID,
		TournamentID: tournamentID,
		Amount:       amount,
		UTR:          utr,
		Status:       StatusPending,
		CreatedAt:    time.Now(),
	}
	f.payments[key] = p
	cp := *p
	return &cp, nil
}

func (f *fakeStore) Confirm(ctx context.Context, userID, tournamentID int64) (int64, bool, error) {
	p, ok := f.payments[pairKey{userID, tournamentID}]
	if !ok || p.Status == StatusConfirmed {
		return 0, false, nil
	}
	p.Status = StatusConfirmed
	now := time.Now()
	p.ConfirmedAt = &now
	f.confirmedCount[tournamentID]++
	return p.Amount, true, nil
}

func (f *fakeStore) Decline(ctx context.Context, userID, tournamentID int64) (int64, bool, error) {
	p, ok := f.payments[pairKey{userID, tournamentID}]
	if !ok || p.Status != StatusPending {
		return 0, false, nil
	}
	p.Status = StatusDeclined
	return p.Amount, true, nil
}

func (f *fakeStore) HasConfirmed(ctx context.Context, userID, tournamentID int64) (bool, error) {
	p, ok := f.payments[pairKey{userID, tournamentID}]
	return ok && p.Status == StatusConfirmed, nil
}

func (f *fakeStore) GetByPair(ctx context.Context, userID, tournamentID int64) (*Payment, error) {
	p, ok := f.payments[pairKey{userID, tournamentID}]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListPending(ctx context.Context) ([]PendingEntry, error) {
	var out []PendingEntry
	for _, p := range f.payments {
		if p.Status == StatusPending {
			out = append(out, PendingEntry{UserID: p.UserID, Amount: p.Amount, UTR: p.UTR})
		}
	}
	return out, nil
}

func (f *fakeStore) Summarize(ctx context.Context, since time.Time) (*FinancialSummary, error) {
	s := &FinancialSummary{Since: since}
	for _, p := range f.payments {
		switch p.Status {
		case StatusConfirmed:
			if p.ConfirmedAt != nil && !p.ConfirmedAt.Before(since) {
				s.Revenue += p.Amount
				s.Confirmed++
			}
		case StatusPending:
			s.Pending++
		}
	}
	return s, nil
}

type fakeFinder struct {
	byCode map[string]*tournaments.Tournament
}

func (f *fakeFinder) Get(ctx context.Context, code string) (*tournaments.Tournament, error) {
	t, ok := f.byCode[code]
	if !ok {
		return nil, common.ErrTournamentNotFound
	}
	return t, nil
}

type mirrorCall struct {
	code   string
	status string
	amount int64
}

type fakeMirror struct {
	submitted []players.PaymentSummary
	statuses  []mirrorCall
}

func (f *fakeMirror) RecordPaymentSubmitted(ctx context.Context, userID int64, summary players.PaymentSummary) {
	f.submitted = append(f.submitted, summary)
}

func (f *fakeMirror) RecordPaymentStatus(ctx context.Context, userID int64, tournamentCode, status string, amount int64) {
	f.statuses = append(f.statuses, mirrorCall{tournamentCode, status, amount})
}

func newTestService() (*Service, *fakeStore, *fakeMirror, *[]VerificationRequest) {
	store := newFakeStore()
	finder := &fakeFinder{byCode: map[string]*tournaments.Tournament{
		"TN1A2B": {ID: 1, Code: "TN1A2B", Name: "ROYALE RUMBLE", EntryFee: 80},
	}}
	mirror := &fakeMirror{}
	var notified []VerificationRequest
	notify := func(req VerificationRequest) { notified = append(notified, req) }
	loc := time.FixedZone("IST", 5*3600+1800)
	return NewService(store, finder, mirror, notify, 10, loc), store, mirror, &notified
}

func TestSubmit_CreatesPendingAndNotifies(t *testing.T) {
	svc, store, mirror, notified := newTestService()

	p, tour, err := svc.Submit(context.Background(), 100, "ace", "TN1A2B", "123456789012")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, int64(80), p.Amount) // Сумма — взнос турнира
	assert.Equal(t, "TN1A2B", tour.Code)

	require.Len(t, *notified, 1)
	assert.Equal(t, "123456789012", (*notified)[0].UTR)

	require.Len(t, mirror.submitted, 1)
	assert.Equal(t, "pending", mirror.submitted[0].Status)

	assert.Len(t, store.payments, 1)
}

func TestSubmit_UTRFormatGate(t *testing.T) {
	svc, store, _, notified := newTestService()

	// Короткий UTR.
	_, _, err := svc.Submit(context.Background(), 100, "ace", "TN1A2B", "12345")
	assert.ErrorIs(t, err, common.ErrInvalidUTR)

	// Нечисловой UTR.
	_, _, err = svc.Submit(context.Background(), 100, "ace", "TN1A2B", "12345678901a")
	assert.ErrorIs(t, err, common.ErrInvalidUTR)
	assert.ErrorIs(t, err, common.ErrValidation)

	assert.Empty(t, store.payments)
	assert.Empty(t, *notified)
}

func TestSubmit_UnknownTournament(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, _, err := svc.Submit(context.Background(), 100, "ace", "ZZZZZZ", "123456789012")
	assert.ErrorIs(t, err, common.ErrTournamentNotFound)
}

func TestSubmit_ResubmissionOverwritesInPlace(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Submit(ctx, 100, "ace", "TN1A2B", "111111111111")
	require.NoError(t, err)
	p, _, err := svc.Submit(ctx, 100, "ace", "TN1A2B", "222222222222")
	require.NoError(t, err)

	// Одна логическая запись на пару, UTR обновлён на месте.
	assert.Len(t, store.payments, 1)
	assert.Equal(t, "222222222222", p.UTR)
	assert.Equal(t, StatusPending, p.Status)
}

func TestSubmit_ConfirmedPairRejected(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Submit(ctx, 100, "ace", "TN1A2B", "111111111111")
	require.NoError(t, err)
	_, ok, err := svc.Confirm(ctx, 100, "TN1A2B")
	require.NoError(t, err)
	require.True(t, ok)

	_, _, err = svc.Submit(ctx, 100, "ace", "TN1A2B", "222222222222")
	assert.ErrorIs(t, err, common.ErrAlreadyConfirmed)

	// Подтверждённая запись не перезаписана.
	p := store.payments[pairKey{100, 1}]
	assert.Equal(t, "111111111111", p.UTR)
	assert.Equal(t, StatusConfirmed, p.Status)
}

func TestConfirm_IdempotentNoDoubleCredit(t *testing.T) {
	svc, store, mirror, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Submit(ctx, 100, "ace", "TN1A2B", "123456789012")
	require.NoError(t, err)

	amount, ok, err := svc.Confirm(ctx, 100, "TN1A2B")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(80), amount)

	// Повторное подтверждение — no-op, счётчик не растёт.
	_, ok, err = svc.Confirm(ctx, 100, "TN1A2B")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), store.confirmedCount[1])

	require.Len(t, mirror.statuses, 1)
	assert.Equal(t, mirrorCall{"TN1A2B", "confirmed", 80}, mirror.statuses[0])
}

func TestConfirm_WithoutSubmission(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, ok, err := svc.Confirm(context.Background(), 100, "TN1A2B")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecline_AllowsResubmission(t *testing.T) {
	svc, store, mirror, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Submit(ctx, 100, "ace", "TN1A2B", "111111111111")
	require.NoError(t, err)

	ok, err := svc.Decline(ctx, 100, "TN1A2B")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, mirrorCall{"TN1A2B", "declined", 80}, mirror.statuses[0])

	// Отклонение не трогает счётчик турнира.
	assert.Zero(t, store.confirmedCount[1])

	// Переподача после отклонения проходит и снова становится pending.
	p, _, err := svc.Submit(ctx, 100, "ace", "TN1A2B", "222222222222")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)

	// Подтвердить можно и после отклонения с переподачей.
	_, ok, err = svc.Confirm(ctx, 100, "TN1A2B")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mustHasConfirmed(t, svc, 100, 1))
}

func TestDecline_PendingOnly(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Submit(ctx, 100, "ace", "TN1A2B", "123456789012")
	require.NoError(t, err)
	_, ok, err := svc.Confirm(ctx, 100, "TN1A2B")
	require.NoError(t, err)
	require.True(t, ok)

	// Подтверждённый платёж отклонить нельзя.
	ok, err = svc.Decline(ctx, 100, "TN1A2B")
	require.NoError(t, err)
	assert.False(t, ok)
}

func mustHasConfirmed(t *testing.T, svc *Service, userID, tournamentID int64) bool {
	t.Helper()
	ok, err := svc.HasConfirmed(context.Background(), userID, tournamentID)
	require.NoError(t, err)
	return ok
}
