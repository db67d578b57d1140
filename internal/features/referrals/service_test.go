package referrals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomercyzone.in/tournament-bot/internal/common"
	"nomercyzone.in/tournament-bot/internal/features/players"
)

type fakeStore struct {
	referees map[int64]int64 // referee -> referrer
	grantErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{referees: make(map[int64]int64)}
}

func (f *fakeStore) Grant(ctx context.Context, referrerUserID, refereeUserID int64, code string) (bool, error) {
	if f.grantErr != nil {
		return false, f.grantErr
	}
	if _, ok := f.referees[refereeUserID]; ok {
		return false, nil
	}
	f.referees[refereeUserID] = referrerUserID
	return true, nil
}

func (f *fakeStore) HasReferee(ctx context.Context, refereeUserID int64) (bool, error) {
	_, ok := f.referees[refereeUserID]
	return ok, nil
}

func (f *fakeStore) CountByReferrer(ctx context.Context, referrerUserID int64) (int64, error) {
	var n int64
	for _, r := range f.referees {
		if r == referrerUserID {
			n++
		}
	}
	return n, nil
}

type fakeFinder struct {
	byCode map[string]*players.Player
	byID   map[int64]*players.Player
}

func (f *fakeFinder) GetByUserID(ctx context.Context, userID int64) (*players.Player, error) {
	p, ok := f.byID[userID]
	if !ok {
		return nil, common.ErrPlayerNotFound
	}
	return p, nil
}

func (f *fakeFinder) GetByReferralCode(ctx context.Context, code string) (*players.Player, error) {
	p, ok := f.byCode[code]
	if !ok {
		return nil, common.ErrPlayerNotFound
	}
	return p, nil
}

func newTestService(enabled bool) (*Service, *fakeStore) {
	store := newFakeStore()
	finder := &fakeFinder{
		byCode: map[string]*players.Player{
			"REF111111": {UserID: 1, Username: "owner"},
		},
		byID: map[int64]*players.Player{
			1: {UserID: 1, Username: "owner", FreeEntries: 3},
		},
	}
	return NewService(store, finder, enabled), store
}

func TestActivate_GrantsFreeEntry(t *testing.T) {
	svc, store := newTestService(true)

	referrer, err := svc.Activate(context.Background(), 2, "REF111111")
	require.NoError(t, err)

	assert.Equal(t, int64(1), referrer.UserID)
	assert.Equal(t, int64(1), store.referees[2])
}

func TestActivate_SelfReferralRejected(t *testing.T) {
	svc, store := newTestService(true)

	_, err := svc.Activate(context.Background(), 1, "REF111111")
	assert.ErrorIs(t, err, common.ErrSelfReferral)
	assert.Empty(t, store.referees)
}

func TestActivate_RefereeCountedOnce(t *testing.T) {
	svc, _ := newTestService(true)

	_, err := svc.Activate(context.Background(), 2, "REF111111")
	require.NoError(t, err)

	// Повторная активация (того же или другого кода) не проходит.
	_, err = svc.Activate(context.Background(), 2, "REF111111")
	assert.ErrorIs(t, err, common.ErrAlreadyReferred)
}

func TestActivate_UnknownCode(t *testing.T) {
	svc, _ := newTestService(true)

	_, err := svc.Activate(context.Background(), 2, "REF000000")
	assert.ErrorIs(t, err, common.ErrReferralCodeUnknown)
}

func TestActivate_DisabledFeature(t *testing.T) {
	svc, _ := newTestService(false)

	_, err := svc.Activate(context.Background(), 2, "REF111111")
	assert.ErrorIs(t, err, common.ErrReferralCodeUnknown)
}

func TestStatsFor(t *testing.T) {
	svc, store := newTestService(true)
	store.referees[2] = 1
	store.referees[3] = 1

	stats, err := svc.StatsFor(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Invited)
	assert.Equal(t, int64(3), stats.FreeEntries)
}
