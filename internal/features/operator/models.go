// Package operator реализует операторскую панель с парольной аутентификацией.
// models.go описывает структуры сессий и попыток входа.
package operator

import "time"

// Session — активная сессия оператора.
type Session struct {
	ID              int64
	UserID          int64
	SessionToken    string
	AuthenticatedAt time.Time
	ExpiresAt       time.Time
	LastActivity    time.Time
	IsActive        bool
}

// LoginAttempt — попытка входа (для защиты от brute-force).
type LoginAttempt struct {
	ID          int64
	UserID      int64
	AttemptTime time.Time
	Success     bool
}

const (
	// sessionTTL — срок жизни сессии после успешного входа.
	sessionTTL = 24 * time.Hour
	// maxAttempts неудачных попыток за attemptWindow блокируют вход.
	maxAttempts   = 3
	attemptWindow = time.Hour
)
