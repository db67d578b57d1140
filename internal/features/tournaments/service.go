// Package tournaments — service.go содержит бизнес-логику жизненного цикла.
package tournaments

import (
	"context"
	"math/rand"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/common"
)

// Store — порт хранилища турниров.
type Store interface {
	Create(ctx context.Context, t *Tournament) error
	GetByCode(ctx context.Context, code string) (*Tournament, error)
	ListActive(ctx context.Context) ([]*Tournament, error)
	PublishRoom(ctx context.Context, code, roomID, password string) (*Tournament, error)
	Finish(ctx context.Context, code string, status Status) (bool, error)
	Delete(ctx context.Context, code string) (bool, error)
	RemoveParticipant(ctx context.Context, tournamentID, userID int64) (bool, error)
	Roster(ctx context.Context, tournamentID int64) ([]RosterEntry, error)
	IsParticipant(ctx context.Context, tournamentID, userID int64) (bool, error)
	StatsByCategory(ctx context.Context) ([]CategoryStats, error)
}

// CodeIssuer выдаёт уникальные коды турниров (ids.Generator).
type CodeIssuer interface {
	NewTournamentCode(ctx context.Context) (string, error)
}

// Service управляет турнирами.
type Service struct {
	store Store
	codes CodeIssuer
	loc   *time.Location
}

// NewService создаёт новый сервис турниров.
func NewService(store Store, codes CodeIssuer, loc *time.Location) *Service {
	return &Service{store: store, codes: codes, loc: loc}
}

// CreateSpec — параметры создания турнира.
type CreateSpec struct {
	Name         string
	Category     Category
	Date         string // YYYY-MM-DD
	Time         string // HH:MM
	MapName      string
	EntryFee     int64
	Prize        PrizeStructure
	AIGenerated  bool
	AIConfidence float64
}

// Create валидирует параметры, выдаёт код и сохраняет турнир.
// Код генерируется до записи: при недоступном хранилище
// частично собранный турнир не сохраняется.
func (s *Service) Create(ctx context.Context, spec CreateSpec) (*Tournament, error) {
	if _, err := ParseCategory(string(spec.Category)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(spec.Name) == "" {
		return nil, common.ErrValidation
	}
	if spec.EntryFee <= 0 {
		return nil, common.ErrInvalidAmount
	}
	if strings.TrimSpace(spec.MapName) == "" {
		return nil, common.ErrMapRequired
	}
	scheduledAt, err := s.parseSchedule(spec.Date, spec.Time)
	if err != nil {
		return nil, err
	}

	code, err := s.codes.NewTournamentCode(ctx)
	if err != nil {
		return nil, err
	}

	t := &Tournament{
		Code:         code,
		Name:         spec.Name,
		Category:     spec.Category,
		ScheduledAt:  scheduledAt,
		MapName:      spec.MapName,
		EntryFee:     spec.EntryFee,
		Prize:        spec.Prize,
		AIGenerated:  spec.AIGenerated,
		AIConfidence: spec.AIConfidence,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"code":     t.Code,
		"category": t.Category,
		"fee":      t.EntryFee,
	}).Info("Турнир создан")

	return t, nil
}

// quickNames — пул названий для быстрого создания одной командой.
var quickNames = map[Category][]string{
	CategorySolo:  {"HEADSHOT KING CHALLENGE", "SOLO SUPREMACY", "LONE WOLF BATTLE"},
	CategoryDuo:   {"DYNAMIC DUOS", "PARTNER POWER", "DUO DOMINATION"},
	CategorySquad: {"ROYALE RUMBLE", "SQUAD SHOWDOWN", "TEAM TITANS"},
}

// QuickCreate создаёт турнир одной командой: случайное название и карта,
// стандартный взнос и rank-based призы, ближайший прайм-тайм слот.
func (s *Service) QuickCreate(ctx context.Context, category Category) (*Tournament, error) {
	if _, err := ParseCategory(string(category)); err != nil {
		return nil, err
	}

	names := quickNames[category]
	slot := s.NextPrimeSlot(time.Now().In(s.loc))

	return s.Create(ctx, CreateSpec{
		Name:     names[rand.Intn(len(names))],
		Category: category,
		Date:     slot.Format("2006-01-02"),
		Time:     slot.Format("15:04"),
		MapName:  Maps[rand.Intn(len(Maps))],
		EntryFee: DefaultEntryFee(category),
		Prize:    DefaultPrize(category, PrizeRankBased),
	})
}

// NextPrimeSlot находит ближайший час в прайм-тайме (19:00–21:00)
// в пределах суток от now; иначе — ближайший дневной слот.
func (s *Service) NextPrimeSlot(now time.Time) time.Time {
	prime := map[int]bool{19: true, 20: true, 21: true}
	good := map[int]bool{15: true, 16: true, 17: true, 18: true, 22: true}

	var fallback time.Time
	for offset := 1; offset <= 24; offset++ {
		candidate := now.Add(time.Duration(offset) * time.Hour).Truncate(time.Hour)
		if prime[candidate.Hour()] {
			return candidate
		}
		if fallback.IsZero() && good[candidate.Hour()] {
			fallback = candidate
		}
	}
	if !fallback.IsZero() {
		return fallback
	}
	return now.Add(24 * time.Hour).Truncate(time.Hour)
}

// Get возвращает турнир по коду.
func (s *Service) Get(ctx context.Context, code string) (*Tournament, error) {
	return s.store.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// ListActive возвращает открытые турниры в стабильном порядке.
func (s *Service) ListActive(ctx context.Context) ([]*Tournament, error) {
	return s.store.ListActive(ctx)
}

// PublishRoom записывает данные комнаты, переводит турнир в live
// и возвращает обновлённый турнир вместе со снимком ростера на момент
// вызова. Участники, вступившие после, рассылку не получают.
func (s *Service) PublishRoom(ctx context.Context, code, roomID, password string) (*Tournament, []RosterEntry, error) {
	if strings.TrimSpace(roomID) == "" || strings.TrimSpace(password) == "" {
		return nil, nil, common.ErrValidation
	}

	t, err := s.store.PublishRoom(ctx, strings.ToUpper(strings.TrimSpace(code)), roomID, password)
	if err != nil {
		return nil, nil, err
	}

	roster, err := s.store.Roster(ctx, t.ID)
	if err != nil {
		// Комната уже опубликована; без снимка рассылать некому.
		return t, nil, err
	}

	log.WithFields(log.Fields{
		"code":   t.Code,
		"roster": len(roster),
	}).Info("Комната опубликована, турнир переведён в live")

	return t, roster, nil
}

// Complete завершает турнир. Возвращает false, если он не был открыт.
func (s *Service) Complete(ctx context.Context, code string) (bool, error) {
	return s.store.Finish(ctx, strings.ToUpper(strings.TrimSpace(code)), StatusCompleted)
}

// Cancel отменяет турнир.
func (s *Service) Cancel(ctx context.Context, code string) (bool, error) {
	return s.store.Finish(ctx, strings.ToUpper(strings.TrimSpace(code)), StatusCancelled)
}

// Delete безусловно удаляет турнир.
func (s *Service) Delete(ctx context.Context, code string) (bool, error) {
	ok, err := s.store.Delete(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if ok {
		log.WithField("code", code).Warn("Турнир удалён оператором")
	}
	return ok, err
}

// RemoveParticipant убирает игрока из ростера (операторская мера,
// платёж и возврат не затрагиваются).
func (s *Service) RemoveParticipant(ctx context.Context, code string, userID int64) (bool, error) {
	t, err := s.Get(ctx, code)
	if err != nil {
		return false, err
	}
	return s.store.RemoveParticipant(ctx, t.ID, userID)
}

// IsParticipant проверяет членство игрока в ростере.
func (s *Service) IsParticipant(ctx context.Context, tournamentID, userID int64) (bool, error) {
	return s.store.IsParticipant(ctx, tournamentID, userID)
}

// StatsByCategory возвращает историческую сводку по категориям.
func (s *Service) StatsByCategory(ctx context.Context) ([]CategoryStats, error) {
	return s.store.StatsByCategory(ctx)
}

// Roster возвращает снимок ростера.
func (s *Service) Roster(ctx context.Context, code string) (*Tournament, []RosterEntry, error) {
	t, err := s.Get(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	roster, err := s.store.Roster(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	return t, roster, nil
}

// parseSchedule собирает дату и время старта в таймзоне сообщества.
func (s *Service) parseSchedule(date, timeOfDay string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return time.Time{}, common.ErrInvalidDate
	}
	tm, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Time{}, common.ErrInvalidTime
	}
	return time.Date(d.Year(), d.Month(), d.Day(), tm.Hour(), tm.Minute(), 0, 0, s.loc), nil
}
