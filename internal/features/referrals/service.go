// Package referrals — service.go содержит бизнес-логику активации кодов.
package referrals

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/common"
	"nomercyzone.in/tournament-bot/internal/features/players"
)

// Store — порт хранилища рефералов.
type Store interface {
	Grant(ctx context.Context, referrerUserID, refereeUserID int64, code string) (bool, error)
	HasReferee(ctx context.Context, refereeUserID int64) (bool, error)
	CountByReferrer(ctx context.Context, referrerUserID int64) (int64, error)
}

// PlayerFinder находит владельца реферального кода.
type PlayerFinder interface {
	GetByUserID(ctx context.Context, userID int64) (*players.Player, error)
	GetByReferralCode(ctx context.Context, code string) (*players.Player, error)
}

// Service управляет реферальной программой.
type Service struct {
	store   Store
	finder  PlayerFinder
	enabled bool
}

// NewService создаёт новый сервис рефералов.
func NewService(store Store, finder PlayerFinder, enabled bool) *Service {
	return &Service{store: store, finder: finder, enabled: enabled}
}

// Activate активирует реферальный код за нового игрока.
// Правила:
//   - свой собственный код активировать нельзя;
//   - каждый приглашённый засчитывается один раз, повтор — no-op;
//   - неизвестный код — ошибка ErrReferralCodeUnknown.
//
// Возвращает пригласившего, чтобы бот мог его уведомить.
func (s *Service) Activate(ctx context.Context, refereeUserID int64, code string) (*players.Player, error) {
	if !s.enabled {
		return nil, common.ErrReferralCodeUnknown
	}

	referrer, err := s.finder.GetByReferralCode(ctx, code)
	if errors.Is(err, common.ErrPlayerNotFound) {
		return nil, common.ErrReferralCodeUnknown
	}
	if err != nil {
		return nil, err
	}

	if referrer.UserID == refereeUserID {
		return nil, common.ErrSelfReferral
	}

	granted, err := s.store.Grant(ctx, referrer.UserID, refereeUserID, code)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, common.ErrAlreadyReferred
	}

	log.WithFields(log.Fields{
		"referrer": referrer.UserID,
		"referee":  refereeUserID,
		"code":     code,
	}).Info("Реферальный код активирован")

	return referrer, nil
}

// StatsFor возвращает реферальную сводку игрока.
func (s *Service) StatsFor(ctx context.Context, userID int64) (*Stats, error) {
	player, err := s.finder.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	invited, err := s.store.CountByReferrer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Stats{Invited: invited, FreeEntries: player.FreeEntries}, nil
}
