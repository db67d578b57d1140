package admission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomercyzone.in/tournament-bot/internal/common"
	"nomercyzone.in/tournament-bot/internal/features/players"
	"nomercyzone.in/tournament-bot/internal/features/tournaments"
)

type seatKey struct {
	userID       int64
	tournamentID int64
}

// fakeWorld моделирует хранилище целиком: игроки, турниры, платежи
// и атомарная посадка с теми же условиями, что и CTE-statements.
type fakeWorld struct {
	players     map[int64]*players.Player
	tournaments map[string]*tournaments.Tournament
	confirmed   map[seatKey]bool
	seated      map[seatKey]bool
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		players:     make(map[int64]*players.Player),
		tournaments: make(map[string]*tournaments.Tournament),
		confirmed:   make(map[seatKey]bool),
		seated:      make(map[seatKey]bool),
	}
}

func (w *fakeWorld) GetByUserID(ctx context.Context, userID int64) (*players.Player, error) {
	p, ok := w.players[userID]
	if !ok {
		return nil, common.ErrPlayerNotFound
	}
	return p, nil
}

func (w *fakeWorld) Get(ctx context.Context, code string) (*tournaments.Tournament, error) {
	t, ok := w.tournaments[code]
	if !ok {
		return nil, common.ErrTournamentNotFound
	}
	return t, nil
}

func (w *fakeWorld) IsParticipant(ctx context.Context, tournamentID, userID int64) (bool, error) {
	return w.seated[seatKey{userID, tournamentID}], nil
}

func (w *fakeWorld) HasConfirmed(ctx context.Context, userID, tournamentID int64) (bool, error) {
	return w.confirmed[seatKey{userID, tournamentID}], nil
}

func (w *fakeWorld) openByID(tournamentID int64) *tournaments.Tournament {
	for _, t := range w.tournaments {
		if t.ID == tournamentID && t.IsOpen() {
			return t
		}
	}
	return nil
}

func (w *fakeWorld) JoinPaid(ctx context.Context, userID, tournamentID int64) (bool, error) {
	key := seatKey{userID, tournamentID}
	if w.openByID(tournamentID) == nil || !w.confirmed[key] || w.seated[key] {
		return false, nil
	}
	w.seated[key] = true
	w.players[userID].TournamentsJoined++
	return true, nil
}

func (w *fakeWorld) JoinFree(ctx context.Context, userID, tournamentID int64) (bool, error) {
	key := seatKey{userID, tournamentID}
	p := w.players[userID]
	if w.openByID(tournamentID) == nil || p.FreeEntries <= 0 || w.seated[key] {
		return false, nil
	}
	w.seated[key] = true
	p.FreeEntries--
	p.TournamentsJoined++
	return true, nil
}

func newTestService() (*Service, *fakeWorld) {
	w := newFakeWorld()
	w.tournaments["TN1A2B"] = &tournaments.Tournament{ID: 1, Code: "TN1A2B", Name: "ROYALE RUMBLE", Status: tournaments.StatusUpcoming, EntryFee: 80}
	w.players[100] = &players.Player{UserID: 100, Username: "ace"}
	return NewService(w, w, w, w), w
}

func TestJoin_WithConfirmedPayment(t *testing.T) {
	svc, w := newTestService()
	w.confirmed[seatKey{100, 1}] = true

	outcome, tour, err := svc.Join(context.Background(), 100, "TN1A2B")
	require.NoError(t, err)

	assert.Equal(t, OutcomeJoined, outcome)
	assert.Equal(t, "TN1A2B", tour.Code)
	assert.True(t, w.seated[seatKey{100, 1}])
	assert.Equal(t, int64(1), w.players[100].TournamentsJoined)
}

func TestJoin_RepeatIsIdempotent(t *testing.T) {
	svc, w := newTestService()
	w.confirmed[seatKey{100, 1}] = true
	ctx := context.Background()

	outcome, _, err := svc.Join(ctx, 100, "TN1A2B")
	require.NoError(t, err)
	require.Equal(t, OutcomeJoined, outcome)

	// Повторное нажатие: нет дубликата, нет двойного списания.
	outcome, _, err = svc.Join(ctx, 100, "TN1A2B")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyJoined, outcome)
	assert.Equal(t, int64(1), w.players[100].TournamentsJoined)
}

func TestJoin_WithoutPaymentRequiresPayment(t *testing.T) {
	svc, w := newTestService()

	outcome, tour, err := svc.Join(context.Background(), 100, "TN1A2B")
	require.NoError(t, err)

	// Сценарий: вступление без платежа — ничего не мутируется.
	assert.Equal(t, OutcomePaymentRequired, outcome)
	assert.NotNil(t, tour)
	assert.False(t, w.seated[seatKey{100, 1}])
	assert.Zero(t, w.players[100].TournamentsJoined)
}

func TestJoin_FreeEntryConsumedOnce(t *testing.T) {
	svc, w := newTestService()
	w.players[100].FreeEntries = 1
	ctx := context.Background()

	outcome, _, err := svc.Join(ctx, 100, "TN1A2B")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFreeEntryUsed, outcome)
	assert.Zero(t, w.players[100].FreeEntries)

	// Повтор — AlreadyJoined, кредит не списывается ниже нуля.
	outcome, _, err = svc.Join(ctx, 100, "TN1A2B")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyJoined, outcome)
	assert.Zero(t, w.players[100].FreeEntries)
}

func TestJoin_ConfirmedPaymentPreferredOverCredit(t *testing.T) {
	svc, w := newTestService()
	w.confirmed[seatKey{100, 1}] = true
	w.players[100].FreeEntries = 2

	outcome, _, err := svc.Join(context.Background(), 100, "TN1A2B")
	require.NoError(t, err)

	// Платёж подтверждён — кредит не тратится.
	assert.Equal(t, OutcomeJoined, outcome)
	assert.Equal(t, int64(2), w.players[100].FreeEntries)
}

func TestJoin_BannedShortCircuits(t *testing.T) {
	svc, w := newTestService()
	w.players[100].IsBanned = true
	w.confirmed[seatKey{100, 1}] = true

	outcome, _, err := svc.Join(context.Background(), 100, "TN1A2B")
	require.NoError(t, err)

	assert.Equal(t, OutcomeBanned, outcome)
	assert.False(t, w.seated[seatKey{100, 1}])
}

func TestJoin_UnknownTournament(t *testing.T) {
	svc, _ := newTestService()

	outcome, _, err := svc.Join(context.Background(), 100, "ZZZZZZ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
}

func TestJoin_FinishedTournamentIsNotFound(t *testing.T) {
	svc, w := newTestService()
	w.confirmed[seatKey{100, 1}] = true
	w.tournaments["TN1A2B"].Status = tournaments.StatusCompleted

	outcome, _, err := svc.Join(context.Background(), 100, "TN1A2B")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
}

func TestJoin_UnregisteredUser(t *testing.T) {
	svc, _ := newTestService()

	outcome, _, err := svc.Join(context.Background(), 999, "TN1A2B")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
}

func TestJoin_FreeCreditRacedAwayRequiresPayment(t *testing.T) {
	svc, w := newTestService()
	w.players[100].FreeEntries = 1
	ctx := context.Background()

	// Между предпроверкой и посадкой последний кредит ушёл
	// конкурентному вступлению в другой турнир. Игрок не в ростере,
	// поэтому ответ — не AlreadyJoined, а запрос оплаты.
	w.tournaments["XX9Z8Y"] = &tournaments.Tournament{ID: 2, Code: "XX9Z8Y", Name: "SQUAD SHOWDOWN", Status: tournaments.StatusUpcoming, EntryFee: 200}
	ok, err := w.JoinFree(ctx, 100, 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, w.players[100].FreeEntries)
	w.players[100].FreeEntries = 1 // Устаревшее значение из предпрочтения.

	fail := &failingSeater{world: w}
	svc = NewService(fail, w, w, w)

	outcome, _, err := svc.Join(ctx, 100, "TN1A2B")
	require.NoError(t, err)
	assert.Equal(t, OutcomePaymentRequired, outcome)
	assert.False(t, w.seated[seatKey{100, 1}])
}

// failingSeater моделирует хранилище, где кредит уже исчерпан:
// бесплатная посадка возвращает false без ошибки.
type failingSeater struct {
	world *fakeWorld
}

func (f *failingSeater) JoinPaid(ctx context.Context, userID, tournamentID int64) (bool, error) {
	return f.world.JoinPaid(ctx, userID, tournamentID)
}

func (f *failingSeater) JoinFree(ctx context.Context, userID, tournamentID int64) (bool, error) {
	return false, nil
}

func TestJoin_RaceResolvedAtStore(t *testing.T) {
	svc, w := newTestService()
	w.confirmed[seatKey{100, 1}] = true

	// Моделируем гонку: между предпроверкой и посадкой другой вызов
	// уже посадил игрока. Атомарная посадка возвращает false,
	// контроллер отвечает AlreadyJoined.
	w.seated[seatKey{100, 1}] = true
	ok, err := w.JoinPaid(context.Background(), 100, 1)
	require.NoError(t, err)
	require.False(t, ok)

	outcome, _, err := svc.Join(context.Background(), 100, "TN1A2B")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyJoined, outcome)
}
