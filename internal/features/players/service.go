// Package players — service.go содержит бизнес-логику управления игроками.
// Сервис координирует регистрацию при первом контакте, баны
// и отражение платёжной истории.
package players

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/common"
)

// Store — порт хранилища игроков. Реализуется *Repository;
// в тестах подменяется фейком.
type Store interface {
	Create(ctx context.Context, p *Player) error
	GetByUserID(ctx context.Context, userID int64) (*Player, error)
	GetByUsername(ctx context.Context, username string) (*Player, error)
	GetByReferralCode(ctx context.Context, code string) (*Player, error)
	Exists(ctx context.Context, userID int64) (bool, error)
	SetBanned(ctx context.Context, userID int64, banned bool) (bool, error)
	AdjustBalance(ctx context.Context, userID int64, delta int64, isWinnings bool) error
	AppendPaymentSummary(ctx context.Context, userID int64, s PaymentSummary) error
	MirrorSummaryStatus(ctx context.Context, userID int64, tournamentCode, status string) error
	AddSpent(ctx context.Context, userID int64, amount int64) error
}

// CodeIssuer выдаёт уникальные реферальные коды (ids.Generator).
type CodeIssuer interface {
	NewReferralCode(ctx context.Context) (string, error)
}

// Service управляет игроками.
type Service struct {
	store Store
	codes CodeIssuer
}

// NewService создаёт новый сервис игроков.
func NewService(store Store, codes CodeIssuer) *Service {
	return &Service{store: store, codes: codes}
}

// EnsurePlayer гарантирует, что игрок есть в базе, и возвращает его запись.
// При первом контакте создаёт запись с новым реферальным кодом.
// Код генерируется ДО вставки: если хранилище недоступно,
// частично собранная запись не сохраняется.
func (s *Service) EnsurePlayer(ctx context.Context, userID int64, username, firstName string) (*Player, error) {
	existing, err := s.store.GetByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrPlayerNotFound) {
		return nil, err
	}

	code, err := s.codes.NewReferralCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("регистрация игрока: %w", err)
	}

	p := &Player{
		UserID:       userID,
		Username:     username,
		FirstName:    firstName,
		ReferralCode: code,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"username": username,
	}).Info("Новый игрок зарегистрирован")

	return s.store.GetByUserID(ctx, userID)
}

// GetByUserID возвращает игрока по его Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Player, error) {
	return s.store.GetByUserID(ctx, userID)
}

// Exists сообщает, известен ли игрок базе, без чтения полной записи.
func (s *Service) Exists(ctx context.Context, userID int64) (bool, error) {
	return s.store.Exists(ctx, userID)
}

// GetByReferralCode возвращает владельца реферального кода.
func (s *Service) GetByReferralCode(ctx context.Context, code string) (*Player, error) {
	return s.store.GetByReferralCode(ctx, code)
}

// Resolve находит игрока по "@username" или числовому ID.
// Операторские команды принимают обе формы.
func (s *Service) Resolve(ctx context.Context, target string) (*Player, error) {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "@") {
		return s.store.GetByUsername(ctx, strings.TrimPrefix(target, "@"))
	}
	var userID int64
	if _, err := fmt.Sscanf(target, "%d", &userID); err != nil {
		return nil, common.ErrPlayerNotFound
	}
	return s.store.GetByUserID(ctx, userID)
}

// Ban выставляет флаг бана. Возвращает false, если игрок
// не найден или уже забанен.
func (s *Service) Ban(ctx context.Context, userID int64) (bool, error) {
	ok, err := s.store.SetBanned(ctx, userID, true)
	if err != nil {
		return false, err
	}
	if ok {
		log.WithField("user_id", userID).Warn("Игрок забанен")
	}
	return ok, nil
}

// Unban снимает бан — единственная мутация, доступная по забаненному игроку.
func (s *Service) Unban(ctx context.Context, userID int64) (bool, error) {
	return s.store.SetBanned(ctx, userID, false)
}

// IsBanned сообщает, забанен ли игрок. Незнакомый игрок не забанен.
func (s *Service) IsBanned(ctx context.Context, userID int64) (bool, error) {
	p, err := s.store.GetByUserID(ctx, userID)
	if errors.Is(err, common.ErrPlayerNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsBanned, nil
}

// Credit начисляет средства на баланс (выигрыш или операторская корректировка).
func (s *Service) Credit(ctx context.Context, userID int64, amount int64, isWinnings bool) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	return s.store.AdjustBalance(ctx, userID, amount, isWinnings)
}

// RecordPaymentSubmitted отражает подачу платежа в денормализованной истории.
// Вызывается движком сверки платежей; сбой здесь не фатален
// (источник истины — payments), поэтому только логируем.
func (s *Service) RecordPaymentSubmitted(ctx context.Context, userID int64, summary PaymentSummary) {
	if err := s.store.AppendPaymentSummary(ctx, userID, summary); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось записать сводку платежа")
	}
}

// RecordPaymentStatus отражает решение оператора в денормализованной истории
// и, для подтверждений, учитывает взнос в total_spent.
func (s *Service) RecordPaymentStatus(ctx context.Context, userID int64, tournamentCode, status string, amount int64) {
	if err := s.store.MirrorSummaryStatus(ctx, userID, tournamentCode, status); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось отразить статус платежа")
	}
	if status == "confirmed" {
		if err := s.store.AddSpent(ctx, userID, amount); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Не удалось учесть взнос")
		}
	}
}
