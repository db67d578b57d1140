// Package ids генерирует короткие коды: идентификаторы турниров
// и реферальные коды. Коды проверяются на уникальность по хранилищу
// перед выдачей, с повтором при коллизии.
package ids

import (
	"context"
	"crypto/rand"
	"fmt"

	"nomercyzone.in/tournament-bot/internal/common"
)

const (
	// Алфавит кодов турниров: заглавные буквы + цифры, 6 символов ("TN1A2B").
	tournamentAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tournamentLength   = 6

	// Реферальные коды: префикс REF + 6 цифр ("REF123456").
	referralPrefix   = "REF"
	referralAlphabet = "0123456789"
	referralLength   = 6

	// Максимум попыток при коллизиях. Пространство кодов 36^6,
	// так что больше нескольких попыток — признак проблемы с хранилищем.
	maxAttempts = 5
)

// CodeStore — порт проверки занятости кода.
type CodeStore interface {
	// TournamentCodeExists сообщает, занят ли код турнира.
	TournamentCodeExists(ctx context.Context, code string) (bool, error)
	// ReferralCodeExists сообщает, занят ли реферальный код.
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
}

// Generator выдаёт уникальные коды.
type Generator struct {
	store CodeStore
}

// NewGenerator создаёт генератор кодов поверх хранилища.
func NewGenerator(store CodeStore) *Generator {
	return &Generator{store: store}
}

// NewTournamentCode возвращает свободный код турнира.
// При недоступности хранилища возвращает ошибку ErrStoreUnavailable:
// вызывающий НЕ должен сохранять частично собранную сущность.
func (g *Generator) NewTournamentCode(ctx context.Context) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code, err := randomCode(tournamentAlphabet, tournamentLength)
		if err != nil {
			return "", err
		}
		exists, err := g.store.TournamentCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%w: проверка кода турнира: %v", common.ErrStoreUnavailable, err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("не удалось подобрать свободный код турнира за %d попыток", maxAttempts)
}

// NewReferralCode возвращает свободный реферальный код.
func (g *Generator) NewReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		suffix, err := randomCode(referralAlphabet, referralLength)
		if err != nil {
			return "", err
		}
		code := referralPrefix + suffix
		exists, err := g.store.ReferralCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%w: проверка реферального кода: %v", common.ErrStoreUnavailable, err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("не удалось подобрать свободный реферальный код за %d попыток", maxAttempts)
}

// randomCode собирает строку длины n из алфавита alphabet на crypto/rand.
// Выборка с отбрасыванием, чтобы не перекашивать распределение по модулю.
func randomCode(alphabet string, n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, 1)
	limit := byte(256 - 256%len(alphabet))

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("ошибка генерации случайных байт: %w", err)
		}
		if buf[0] >= limit {
			continue
		}
		out = append(out, alphabet[int(buf[0])%len(alphabet)])
	}
	return string(out), nil
}
