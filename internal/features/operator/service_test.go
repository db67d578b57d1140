package operator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomercyzone.in/tournament-bot/internal/common"
)

type fakeStore struct {
	sessions []*Session
	attempts []LoginAttempt
}

func (f *fakeStore) CreateSession(ctx context.Context, session *Session) error {
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeStore) GetActiveSession(ctx context.Context, userID int64) (*Session, error) {
	for i := len(f.sessions) - 1; i >= 0; i-- {
		s := f.sessions[i]
		if s.UserID == userID && time.Now().Before(s.ExpiresAt) {
			return s, nil
		}
	}
	return nil, common.ErrSessionExpired
}

func (f *fakeStore) DeactivateSessions(ctx context.Context, userID int64) error {
	var kept []*Session
	for _, s := range f.sessions {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	f.sessions = kept
	return nil
}

func (f *fakeStore) TouchActivity(ctx context.Context, userID int64) error { return nil }

func (f *fakeStore) LogAttempt(ctx context.Context, userID int64, success bool) error {
	f.attempts = append(f.attempts, LoginAttempt{UserID: userID, Success: success, AttemptTime: time.Now()})
	return nil
}

func (f *fakeStore) CountRecentFailures(ctx context.Context, userID int64, period time.Duration) (int, error) {
	since := time.Now().Add(-period)
	count := 0
	for _, a := range f.attempts {
		if a.UserID == userID && !a.Success && a.AttemptTime.After(since) {
			count++
		}
	}
	return count, nil
}

func newTestService() (*Service, *fakeStore) {
	store := &fakeStore{}
	hash := HashPassword("hunter2", []byte("0123456789abcdef"))
	isOperator := func(userID int64) bool { return userID == 1 }
	return NewService(store, hash, isOperator), store
}

func TestLogin_Success(t *testing.T) {
	svc, store := newTestService()

	err := svc.Login(context.Background(), 1, "hunter2")
	require.NoError(t, err)

	require.Len(t, store.sessions, 1)
	assert.NotEmpty(t, store.sessions[0].SessionToken)
	assert.True(t, store.sessions[0].ExpiresAt.After(time.Now().Add(23*time.Hour)))

	// Сессия активна — авторизация проходит.
	assert.NoError(t, svc.Authorize(context.Background(), 1))
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, store := newTestService()

	err := svc.Login(context.Background(), 1, "letmein")
	assert.ErrorIs(t, err, common.ErrWrongPassword)
	assert.Empty(t, store.sessions)
	require.Len(t, store.attempts, 1)
	assert.False(t, store.attempts[0].Success)
}

func TestLogin_NotOperator(t *testing.T) {
	svc, store := newTestService()

	err := svc.Login(context.Background(), 42, "hunter2")
	assert.ErrorIs(t, err, common.ErrNotOperator)
	// Чужие попытки даже не логируются.
	assert.Empty(t, store.attempts)
}

func TestLogin_LockoutAfterThreeFailures(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := svc.Login(ctx, 1, "wrong")
		require.ErrorIs(t, err, common.ErrWrongPassword)
	}

	// Четвёртая попытка блокируется даже с верным паролем.
	err := svc.Login(ctx, 1, "hunter2")
	assert.ErrorIs(t, err, common.ErrTooManyAttempts)
}

func TestAuthorize_WithoutSession(t *testing.T) {
	svc, _ := newTestService()

	err := svc.Authorize(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrSessionExpired)
}

func TestAuthorize_NotOperator(t *testing.T) {
	svc, _ := newTestService()

	err := svc.Authorize(context.Background(), 42)
	assert.ErrorIs(t, err, common.ErrNotOperator)
}

func TestLogout_KillsSession(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Login(ctx, 1, "hunter2"))
	require.NoError(t, svc.Authorize(ctx, 1))

	require.NoError(t, svc.Logout(ctx, 1))
	assert.ErrorIs(t, svc.Authorize(ctx, 1), common.ErrSessionExpired)
}

func TestVerifyArgon2id_BadHashFormats(t *testing.T) {
	assert.False(t, verifyArgon2id("hunter2", "not-a-hash"))
	assert.False(t, verifyArgon2id("hunter2", "$argon2id$v=19$garbage$x$y"))
}
