package players

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomercyzone.in/tournament-bot/internal/common"
)

type fakeStore struct {
	players map[int64]*Player

	createErr error
	getErr    error

	banCalls []int64
	spent    map[int64]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		players: make(map[int64]*Player),
		spent:   make(map[int64]int64),
	}
}

func (f *fakeStore) Create(ctx context.Context, p *Player) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *p
	f.players[p.UserID] = &cp
	return nil
}

func (f *fakeStore) GetByUserID(ctx context.Context, userID int64) (*Player, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.players[userID]
	if !ok {
		return nil, common.ErrPlayerNotFound
	}
	return p, nil
}

func (f *fakeStore) GetByUsername(ctx context.Context, username string) (*Player, error) {
	for _, p := range f.players {
		if p.Username == username {
			return p, nil
		}
	}
	return nil, common.ErrPlayerNotFound
}

func (f *fakeStore) GetByReferralCode(ctx context.Context, code string) (*Player, error) {
	for _, p := range f.players {
		if p.ReferralCode == code {
			return p, nil
		}
	}
	return nil, common.ErrPlayerNotFound
}

func (f *fakeStore) Exists(ctx context.Context, userID int64) (bool, error) {
	_, ok := f.players[userID]
	return ok, nil
}

func (f *fakeStore) SetBanned(ctx context.Context, userID int64, banned bool) (bool, error) {
	f.banCalls = append(f.banCalls, userID)
	p, ok := f.players[userID]
	if !ok || p.IsBanned == banned {
		return false, nil
	}
	p.IsBanned = banned
	return true, nil
}

func (f *fakeStore) AdjustBalance(ctx context.Context, userID int64, delta int64, isWinnings bool) error {
	p, ok := f.players[userID]
	if !ok {
		return common.ErrPlayerNotFound
	}
	p.Balance += delta
	if isWinnings && delta > 0 {
		p.TotalEarned += delta
	}
	return nil
}

func (f *fakeStore) AppendPaymentSummary(ctx context.Context, userID int64, s PaymentSummary) error {
	p, ok := f.players[userID]
	if !ok {
		return common.ErrPlayerNotFound
	}
	p.PaymentSummaries = append(p.PaymentSummaries, s)
	return nil
}

func (f *fakeStore) MirrorSummaryStatus(ctx context.Context, userID int64, tournamentCode, status string) error {
	p, ok := f.players[userID]
	if !ok {
		return common.ErrPlayerNotFound
	}
	for i := range p.PaymentSummaries {
		if p.PaymentSummaries[i].TournamentCode == tournamentCode {
			p.PaymentSummaries[i].Status = status
		}
	}
	return nil
}

func (f *fakeStore) AddSpent(ctx context.Context, userID int64, amount int64) error {
	f.spent[userID] += amount
	return nil
}

type fakeCodes struct {
	code string
	err  error
}

func (f *fakeCodes) NewReferralCode(ctx context.Context) (string, error) {
	return f.code, f.err
}

func TestEnsurePlayer_CreatesOnFirstContact(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeCodes{code: "REF123456"})

	p, err := svc.EnsurePlayer(context.Background(), 100, "ace", "Ace")
	require.NoError(t, err)

	assert.Equal(t, int64(100), p.UserID)
	assert.Equal(t, "ace", p.Username)
	assert.Equal(t, "REF123456", p.ReferralCode)
	assert.False(t, p.IsBanned)
}

func TestEnsurePlayer_ExistingPlayerUnchanged(t *testing.T) {
	store := newFakeStore()
	store.players[100] = &Player{UserID: 100, Username: "ace", ReferralCode: "REF000001", FreeEntries: 2}
	svc := NewService(store, &fakeCodes{code: "REF999999"})

	p, err := svc.EnsurePlayer(context.Background(), 100, "ace", "Ace")
	require.NoError(t, err)

	// Повторный /start не перевыпускает код и не трогает счётчики.
	assert.Equal(t, "REF000001", p.ReferralCode)
	assert.Equal(t, int64(2), p.FreeEntries)
}

func TestEnsurePlayer_CodeIssuerError(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeCodes{err: common.ErrStoreUnavailable})

	_, err := svc.EnsurePlayer(context.Background(), 100, "ace", "Ace")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Empty(t, store.players)
}

func TestResolve_ByUsernameAndID(t *testing.T) {
	store := newFakeStore()
	store.players[100] = &Player{UserID: 100, Username: "ace"}
	svc := NewService(store, &fakeCodes{})

	byName, err := svc.Resolve(context.Background(), "@ace")
	require.NoError(t, err)
	assert.Equal(t, int64(100), byName.UserID)

	byID, err := svc.Resolve(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, int64(100), byID.UserID)

	_, err = svc.Resolve(context.Background(), "garbage")
	assert.ErrorIs(t, err, common.ErrPlayerNotFound)
}

func TestBan_Idempotent(t *testing.T) {
	store := newFakeStore()
	store.players[100] = &Player{UserID: 100}
	svc := NewService(store, &fakeCodes{})

	ok, err := svc.Ban(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, ok)

	// Повторный бан того же игрока — no-op.
	ok, err = svc.Ban(context.Background(), 100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsBanned_UnknownPlayerIsNotBanned(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeCodes{})

	banned, err := svc.IsBanned(context.Background(), 555)
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestCredit_RejectsNonPositive(t *testing.T) {
	store := newFakeStore()
	store.players[100] = &Player{UserID: 100}
	svc := NewService(store, &fakeCodes{})

	err := svc.Credit(context.Background(), 100, 0, false)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	err = svc.Credit(context.Background(), 100, -50, true)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
}

func TestRecordPaymentStatus_ConfirmedAddsSpent(t *testing.T) {
	store := newFakeStore()
	store.players[100] = &Player{
		UserID: 100,
		PaymentSummaries: []PaymentSummary{
			{TournamentCode: "AB12CD", Status: "pending", Amount: 50},
		},
	}
	svc := NewService(store, &fakeCodes{})

	svc.RecordPaymentStatus(context.Background(), 100, "AB12CD", "confirmed", 50)

	assert.Equal(t, "confirmed", store.players[100].PaymentSummaries[0].Status)
	assert.Equal(t, int64(50), store.spent[100])

	svc.RecordPaymentStatus(context.Background(), 100, "AB12CD", "declined", 50)
	assert.Equal(t, "declined", store.players[100].PaymentSummaries[0].Status)
	// Отклонение не трогает total_spent.
	assert.Equal(t, int64(50), store.spent[100])
}

func TestRecordPaymentSubmitted_StoreErrorIsSwallowed(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeCodes{})

	// Игрока нет — запись сводки падает, но метод не паникует и не возвращает ошибку.
	assert.NotPanics(t, func() {
		svc.RecordPaymentSubmitted(context.Background(), 42, PaymentSummary{TournamentCode: "XX"})
	})
}
