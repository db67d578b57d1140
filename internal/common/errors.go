// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import (
	"errors"
	"fmt"
)

// Классы ошибок ядра. Все конкретные ошибки валидации оборачивают
// ErrValidation, чтобы обработчики могли проверять errors.Is по классу.
var (
	// ErrValidation — некорректный ввод (формат даты, суммы, UTR и т.п.)
	ErrValidation = errors.New("validation failed")
	// ErrNotFound — сущность не найдена
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable — хранилище недоступно; единственный транзиентный
	// класс. Ядро не ретраит само — сообщаем и логируем.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Ошибки платежей
var (
	// ErrInvalidUTR — UTR не прошёл форматную проверку (длина/только цифры)
	ErrInvalidUTR = wrapValidation("invalid UTR format")
	// ErrAlreadyConfirmed — платёж по паре (игрок, турнир) уже подтверждён;
	// повторная подача отклоняется, запись неизменяема
	ErrAlreadyConfirmed = errors.New("payment already confirmed")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = wrapValidation("amount must be positive")
)

// Ошибки турниров
var (
	// ErrTournamentNotFound — турнир с таким кодом не существует
	ErrTournamentNotFound = errors.New("tournament not found")
	// ErrTournamentFinished — турнир завершён или отменён, мутации запрещены
	ErrTournamentFinished = errors.New("tournament already finished")
	// ErrInvalidCategory — категория не из {solo, duo, squad}
	ErrInvalidCategory = wrapValidation("invalid tournament category")
	// ErrInvalidDate — дата не в формате YYYY-MM-DD
	ErrInvalidDate = wrapValidation("invalid date format")
	// ErrInvalidTime — время не в формате HH:MM
	ErrInvalidTime = wrapValidation("invalid time format")
	// ErrInvalidPrize — выбор призовой схемы не 1/2/3
	ErrInvalidPrize = wrapValidation("invalid prize structure choice")
	// ErrMapRequired — карта не указана
	ErrMapRequired = wrapValidation("map is required")
)

// Ошибки игроков
var (
	// ErrPlayerNotFound — игрок не найден в базе
	ErrPlayerNotFound = errors.New("player not found")
	// ErrPlayerBanned — игрок забанен; любые мутации кроме разбана запрещены
	ErrPlayerBanned = errors.New("player is banned")
)

// Ошибки рефералов
var (
	// ErrSelfReferral — попытка активировать собственный код
	ErrSelfReferral = errors.New("cannot use your own referral code")
	// ErrAlreadyReferred — игрок уже был приглашён ранее
	ErrAlreadyReferred = errors.New("player already referred")
	// ErrReferralCodeUnknown — код не принадлежит ни одному игроку
	ErrReferralCodeUnknown = errors.New("unknown referral code")
)

// Ошибки операторской панели
var (
	// ErrNotOperator — пользователь не оператор
	ErrNotOperator = errors.New("not an operator")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("wrong password")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("too many login attempts, wait 1 hour")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("session expired, log in again")
)

// StoreError оборачивает неожиданную ошибку хранилища в ErrStoreUnavailable.
// «Не найдено» сюда не относится — для него есть свои ошибки.
func StoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// wrapValidation создаёт ошибку, для которой errors.Is(err, ErrValidation) == true.
func wrapValidation(msg string) error {
	return &validationError{msg: msg}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }
