// Package admission реализует контроллер допуска — единственную операцию,
// наблюдающую обе машины состояний (турнир и платёж) атомарно.
package admission

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/common"
	"nomercyzone.in/tournament-bot/internal/features/players"
	"nomercyzone.in/tournament-bot/internal/features/tournaments"
)

// Outcome — исход попытки вступления.
type Outcome int

const (
	OutcomeJoined Outcome = iota
	OutcomeAlreadyJoined
	OutcomePaymentRequired
	OutcomeFreeEntryUsed
	OutcomeBanned
	OutcomeNotFound
)

// String — для логов.
func (o Outcome) String() string {
	switch o {
	case OutcomeJoined:
		return "joined"
	case OutcomeAlreadyJoined:
		return "already_joined"
	case OutcomePaymentRequired:
		return "payment_required"
	case OutcomeFreeEntryUsed:
		return "free_entry_used"
	case OutcomeBanned:
		return "banned"
	default:
		return "not_found"
	}
}

// Seater — порт атомарных операций посадки.
type Seater interface {
	JoinPaid(ctx context.Context, userID, tournamentID int64) (bool, error)
	JoinFree(ctx context.Context, userID, tournamentID int64) (bool, error)
}

// PlayerGate — проверки по игроку.
type PlayerGate interface {
	GetByUserID(ctx context.Context, userID int64) (*players.Player, error)
}

// TournamentGate — проверки по турниру.
type TournamentGate interface {
	Get(ctx context.Context, code string) (*tournaments.Tournament, error)
	IsParticipant(ctx context.Context, tournamentID, userID int64) (bool, error)
}

// PaymentGate — авторизационная проверка платежа.
type PaymentGate interface {
	HasConfirmed(ctx context.Context, userID, tournamentID int64) (bool, error)
}

// Service — контроллер допуска.
type Service struct {
	seater      Seater
	players     PlayerGate
	tournaments TournamentGate
	payments    PaymentGate
}

// NewService создаёт контроллер допуска.
func NewService(seater Seater, playerGate PlayerGate, tournamentGate TournamentGate, paymentGate PaymentGate) *Service {
	return &Service{
		seater:      seater,
		players:     playerGate,
		tournaments: tournamentGate,
		payments:    paymentGate,
	}
}

// Join пытается посадить игрока в турнир. Порядок проверок фиксирован:
// бан → существование и открытость турнира → повторное вступление →
// подтверждённый платёж → бесплатный вход → оплата требуется.
// Предварительные чтения — быстрые отказы; сами посадки атомарны
// и перепроверяют условия, так что гонка двух быстрых нажатий
// разрешается в хранилище, а не здесь.
func (s *Service) Join(ctx context.Context, userID int64, tournamentCode string) (Outcome, *tournaments.Tournament, error) {
	player, err := s.players.GetByUserID(ctx, userID)
	if errors.Is(err, common.ErrPlayerNotFound) {
		return OutcomeNotFound, nil, nil
	}
	if err != nil {
		return OutcomeNotFound, nil, err
	}
	if player.IsBanned {
		return OutcomeBanned, nil, nil
	}

	t, err := s.tournaments.Get(ctx, tournamentCode)
	if errors.Is(err, common.ErrTournamentNotFound) {
		return OutcomeNotFound, nil, nil
	}
	if err != nil {
		return OutcomeNotFound, nil, err
	}
	if !t.IsOpen() {
		return OutcomeNotFound, nil, nil
	}

	joined, err := s.tournaments.IsParticipant(ctx, t.ID, userID)
	if err != nil {
		return OutcomeNotFound, nil, err
	}
	if joined {
		return OutcomeAlreadyJoined, t, nil
	}

	hasPaid, err := s.payments.HasConfirmed(ctx, userID, t.ID)
	if err != nil {
		return OutcomeNotFound, nil, err
	}
	if hasPaid {
		ok, err := s.seater.JoinPaid(ctx, userID, t.ID)
		if err != nil {
			return OutcomeNotFound, nil, err
		}
		if !ok {
			// Конкурентный вызов успел раньше.
			return OutcomeAlreadyJoined, t, nil
		}
		s.logJoin(userID, t, OutcomeJoined)
		return OutcomeJoined, t, nil
	}

	if player.FreeEntries > 0 {
		ok, err := s.seater.JoinFree(ctx, userID, t.ID)
		if err != nil {
			return OutcomeNotFound, nil, err
		}
		if !ok {
			// Либо игрок уже в ростере, либо последний кредит ушёл
			// конкурентному вступлению в другой турнир.
			joined, err := s.tournaments.IsParticipant(ctx, t.ID, userID)
			if err != nil {
				return OutcomeNotFound, nil, err
			}
			if joined {
				return OutcomeAlreadyJoined, t, nil
			}
			return OutcomePaymentRequired, t, nil
		}
		s.logJoin(userID, t, OutcomeFreeEntryUsed)
		return OutcomeFreeEntryUsed, t, nil
	}

	return OutcomePaymentRequired, t, nil
}

func (s *Service) logJoin(userID int64, t *tournaments.Tournament, outcome Outcome) {
	log.WithFields(log.Fields{
		"user_id": userID,
		"code":    t.Code,
		"outcome": outcome.String(),
	}).Info("Игрок допущен в турнир")
}
