// Package operator — service.go содержит аутентификацию и авторизацию
// операторов: пароль Argon2id, сессии на 24 часа, защита от brute-force.
package operator

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/common"
)

// Store — порт хранилища сессий.
type Store interface {
	CreateSession(ctx context.Context, session *Session) error
	GetActiveSession(ctx context.Context, userID int64) (*Session, error)
	DeactivateSessions(ctx context.Context, userID int64) error
	TouchActivity(ctx context.Context, userID int64) error
	LogAttempt(ctx context.Context, userID int64, success bool) error
	CountRecentFailures(ctx context.Context, userID int64, period time.Duration) (int, error)
}

// Service управляет операторскими сессиями.
type Service struct {
	store        Store
	passwordHash string
	isOperator   func(userID int64) bool
}

// NewService создаёт сервис операторов. isOperator — проверка
// принадлежности к настроенному списку операторов.
func NewService(store Store, passwordHash string, isOperator func(userID int64) bool) *Service {
	return &Service{
		store:        store,
		passwordHash: passwordHash,
		isOperator:   isOperator,
	}
}

// Login проверяет пароль и открывает сессию.
// 3 неудачные попытки за час блокируют вход на час.
func (s *Service) Login(ctx context.Context, userID int64, password string) error {
	if !s.isOperator(userID) {
		return common.ErrNotOperator
	}

	failures, err := s.store.CountRecentFailures(ctx, userID, attemptWindow)
	if err != nil {
		return err
	}
	if failures >= maxAttempts {
		log.WithField("user_id", userID).Warn("Вход заблокирован: слишком много попыток")
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.passwordHash)

	if err := s.store.LogAttempt(ctx, userID, match); err != nil {
		log.WithError(err).Warn("Не удалось записать попытку входа")
	}

	if !match {
		return common.ErrWrongPassword
	}

	session := &Session{
		UserID:       userID,
		SessionToken: uuid.NewString(),
		ExpiresAt:    time.Now().Add(sessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return err
	}

	log.WithField("user_id", userID).Info("Оператор вошёл в систему")
	return nil
}

// Authorize проверяет, что пользователь — оператор с живой сессией.
// Успешная проверка продлевает отметку активности.
func (s *Service) Authorize(ctx context.Context, userID int64) error {
	if !s.isOperator(userID) {
		return common.ErrNotOperator
	}
	if _, err := s.store.GetActiveSession(ctx, userID); err != nil {
		return err
	}
	if err := s.store.TouchActivity(ctx, userID); err != nil {
		log.WithError(err).Warn("Не удалось обновить активность сессии")
	}
	return nil
}

// Logout гасит все сессии оператора.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.store.DeactivateSessions(ctx, userID)
}
