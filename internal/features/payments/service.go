// Package payments — service.go содержит бизнес-логику сверки платежей.
// Форматная проверка UTR — синтаксический фильтр, не доказательство
// перевода: решение о подтверждении всегда принимает оператор.
package payments

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/common"
	"nomercyzone.in/tournament-bot/internal/features/players"
	"nomercyzone.in/tournament-bot/internal/features/tournaments"
)

// Store — порт хранилища платежей.
type Store interface {
	Submit(ctx context.Context, userID, tournamentID int64, amount int64, utr string) (*Payment, error)
	Confirm(ctx context.Context, userID, tournamentID int64) (int64, bool, error)
	Decline(ctx context.Context, userID, tournamentID int64) (int64, bool, error)
	HasConfirmed(ctx context.Context, userID, tournamentID int64) (bool, error)
	GetByPair(ctx context.Context, userID, tournamentID int64) (*Payment, error)
	ListPending(ctx context.Context) ([]PendingEntry, error)
	Summarize(ctx context.Context, since time.Time) (*FinancialSummary, error)
}

// TournamentFinder находит турнир по публичному коду.
type TournamentFinder interface {
	Get(ctx context.Context, code string) (*tournaments.Tournament, error)
}

// HistoryMirror отражает события платежа в истории игрока.
// Отражение — best-effort: источник истины остаётся в payments.
type HistoryMirror interface {
	RecordPaymentSubmitted(ctx context.Context, userID int64, summary players.PaymentSummary)
	RecordPaymentStatus(ctx context.Context, userID int64, tournamentCode, status string, amount int64)
}

// OperatorNotifier доставляет оператору запрос на ручную проверку.
type OperatorNotifier func(req VerificationRequest)

// Service управляет сверкой платежей.
type Service struct {
	store       Store
	tournaments TournamentFinder
	mirror      HistoryMirror
	notify      OperatorNotifier
	utrMinLen   int
	loc         *time.Location
}

// NewService создаёт новый сервис платежей.
func NewService(store Store, finder TournamentFinder, mirror HistoryMirror, notify OperatorNotifier, utrMinLen int, loc *time.Location) *Service {
	return &Service{
		store:       store,
		tournaments: finder,
		mirror:      mirror,
		notify:      notify,
		utrMinLen:   utrMinLen,
		loc:         loc,
	}
}

// ValidateUTR проверяет формат банковского референса:
// только цифры, не короче настроенного минимума.
func (s *Service) ValidateUTR(utr string) error {
	if len(utr) < s.utrMinLen || !common.IsNumeric(utr) {
		return common.ErrInvalidUTR
	}
	return nil
}

// Submit принимает заявку на платёж за турнир. Сумма берётся из взноса
// турнира. При уже подтверждённом платеже пары — ErrAlreadyConfirmed,
// без мутаций. Побочные эффекты: запись в историю игрока и запрос
// оператору на ручную проверку.
func (s *Service) Submit(ctx context.Context, userID int64, username, tournamentCode, utr string) (*Payment, *tournaments.Tournament, error) {
	t, err := s.tournaments.Get(ctx, tournamentCode)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ValidateUTR(utr); err != nil {
		return nil, nil, err
	}

	p, err := s.store.Submit(ctx, userID, t.ID, t.EntryFee, utr)
	if err != nil {
		return nil, nil, err
	}
	p.TournamentCode = t.Code

	log.WithFields(log.Fields{
		"user_id": userID,
		"code":    t.Code,
		"amount":  p.Amount,
	}).Info("Платёж подан на проверку")

	s.mirror.RecordPaymentSubmitted(ctx, userID, players.PaymentSummary{
		TournamentCode: t.Code,
		TournamentName: t.Name,
		Amount:         p.Amount,
		UTR:            utr,
		Status:         string(StatusPending),
		CreatedAt:      p.CreatedAt,
	})

	if s.notify != nil {
		s.notify(VerificationRequest{
			UserID:         userID,
			Username:       username,
			TournamentCode: t.Code,
			TournamentName: t.Name,
			Amount:         p.Amount,
			UTR:            utr,
		})
	}

	return p, t, nil
}

// Confirm фиксирует решение оператора «перевод получен».
// Возвращает false при повторном подтверждении или отсутствии записи —
// двойного зачёта не бывает. Подтверждение отражается в истории игрока
// и в его cumulative-счётчиках.
func (s *Service) Confirm(ctx context.Context, userID int64, tournamentCode string) (int64, bool, error) {
	t, err := s.tournaments.Get(ctx, tournamentCode)
	if err != nil {
		return 0, false, err
	}

	amount, ok, err := s.store.Confirm(ctx, userID, t.ID)
	if err != nil || !ok {
		return 0, ok, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"code":    t.Code,
		"amount":  amount,
	}).Info("Платёж подтверждён оператором")

	s.mirror.RecordPaymentStatus(ctx, userID, t.Code, string(StatusConfirmed), amount)
	return amount, true, nil
}

// Decline фиксирует решение «перевод не найден». Счётчики турнира
// не меняются; игрок может подать платёж заново.
func (s *Service) Decline(ctx context.Context, userID int64, tournamentCode string) (bool, error) {
	t, err := s.tournaments.Get(ctx, tournamentCode)
	if err != nil {
		return false, err
	}

	amount, ok, err := s.store.Decline(ctx, userID, t.ID)
	if err != nil || !ok {
		return ok, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"code":    t.Code,
	}).Info("Платёж отклонён оператором")

	s.mirror.RecordPaymentStatus(ctx, userID, t.Code, string(StatusDeclined), amount)
	return true, nil
}

// HasConfirmed — чистое чтение для контроллера допуска.
func (s *Service) HasConfirmed(ctx context.Context, userID, tournamentID int64) (bool, error) {
	return s.store.HasConfirmed(ctx, userID, tournamentID)
}

// StatusFor возвращает платёж пары (игрок, турнир) для справки игроку.
func (s *Service) StatusFor(ctx context.Context, userID int64, tournamentCode string) (*Payment, error) {
	t, err := s.tournaments.Get(ctx, tournamentCode)
	if err != nil {
		return nil, err
	}
	p, err := s.store.GetByPair(ctx, userID, t.ID)
	if err != nil {
		return nil, err
	}
	p.TournamentCode = t.Code
	return p, nil
}

// ListPending возвращает все ожидающие решения платежи.
func (s *Service) ListPending(ctx context.Context) ([]PendingEntry, error) {
	return s.store.ListPending(ctx)
}

// Summary собирает финансовую сводку за период в таймзоне сообщества.
func (s *Service) Summary(ctx context.Context, period common.Period) (*FinancialSummary, error) {
	since := common.PeriodStart(period, time.Now().In(s.loc), s.loc)
	return s.store.Summarize(ctx, since)
}
