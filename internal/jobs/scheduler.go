// Package jobs — фоновые задачи: напоминания о выдаче комнаты
// перед стартом турнира и ежедневный дайджест неподтверждённых платежей.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/common"
	"nomercyzone.in/tournament-bot/internal/features/payments"
	"nomercyzone.in/tournament-bot/internal/features/tournaments"
)

// Messenger отправляет личные сообщения (реализуется *bot.Bot).
type Messenger interface {
	SendMessageToUser(userID int64, text string)
}

// RosterSource отдаёт состав турнира на момент напоминания.
type RosterSource interface {
	Roster(ctx context.Context, code string) (*tournaments.Tournament, []tournaments.RosterEntry, error)
}

// PendingLister отдаёт очередь платежей, ждущих проверки.
type PendingLister interface {
	ListPending(ctx context.Context) ([]payments.PendingEntry, error)
}

// Scheduler управляет фоновыми задачами поверх gocron.
type Scheduler struct {
	sched       gocron.Scheduler
	messenger   Messenger
	roster      RosterSource
	pending     PendingLister
	operatorIDs []int64
	loc         *time.Location

	reminderLead time.Duration // за сколько до старта напоминать
	digestHour   int
}

// New создаёт планировщик. Start нужно вызвать отдельно.
func New(
	messenger Messenger,
	roster RosterSource,
	pending PendingLister,
	operatorIDs []int64,
	loc *time.Location,
	roomReminderMinutes int,
	pendingDigestHour int,
) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("gocron: %w", err)
	}
	return &Scheduler{
		sched:        sched,
		messenger:    messenger,
		roster:       roster,
		pending:      pending,
		operatorIDs:  operatorIDs,
		loc:          loc,
		reminderLead: time.Duration(roomReminderMinutes) * time.Minute,
		digestHour:   pendingDigestHour,
	}, nil
}

// Start регистрирует ежедневный дайджест и запускает планировщик.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(
			gocron.NewAtTime(uint(s.digestHour), 0, 0),
		)),
		gocron.NewTask(func() { s.sendPendingDigest(ctx) }),
		gocron.WithName("pending_digest"),
	)
	if err != nil {
		return fmt.Errorf("pending digest job: %w", err)
	}

	s.sched.Start()
	log.WithFields(log.Fields{
		"digest_hour":   s.digestHour,
		"reminder_lead": s.reminderLead,
	}).Info("Планировщик фоновых задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения задач.
func (s *Scheduler) Stop() {
	if err := s.sched.Shutdown(); err != nil {
		log.WithError(err).Warn("Ошибка остановки планировщика")
	}
}

// ScheduleRoomReminder ставит разовое напоминание участникам о скорой
// выдаче комнаты. Если времени до старта меньше lead — ничего не ставим.
func (s *Scheduler) ScheduleRoomReminder(t *tournaments.Tournament) {
	at := t.ScheduledAt.Add(-s.reminderLead)
	if !at.After(time.Now().In(s.loc)) {
		log.WithField("tournament", t.Code).Debug("Напоминание не ставим: старт слишком близко")
		return
	}

	code := t.Code
	_, err := s.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at)),
		gocron.NewTask(func() { s.sendRoomReminder(context.Background(), code) }),
		gocron.WithName("room_reminder_"+code),
	)
	if err != nil {
		log.WithError(err).WithField("tournament", code).Error("Не удалось поставить напоминание")
		return
	}

	log.WithFields(log.Fields{
		"tournament": code,
		"at":         at.Format("02/01/2006 15:04"),
	}).Info("Напоминание о комнате запланировано")
}

// sendRoomReminder рассылает напоминание текущему составу турнира.
// Состав берём в момент срабатывания, а не постановки: к старту
// могли присоединиться новые игроки.
func (s *Scheduler) sendRoomReminder(ctx context.Context, code string) {
	t, roster, err := s.roster.Roster(ctx, code)
	if err != nil {
		log.WithError(err).WithField("tournament", code).Warn("Напоминание: не удалось получить состав")
		return
	}
	if t.Status != tournaments.StatusUpcoming && t.Status != tournaments.StatusLive {
		log.WithField("tournament", code).Debug("Напоминание отменено: турнир уже завершён")
		return
	}

	text := fmt.Sprintf(
		"⏰ HEADS UP, WARRIOR!\n\n"+
			"🏆 %s [%s] starts at %s.\n"+
			"🔑 Room ID and password drop here shortly before the match.\n\n"+
			"Keep your game loaded and stay sharp! 🔥",
		t.Name, t.Code, t.ScheduledAt.In(s.loc).Format("15:04"))

	for _, entry := range roster {
		s.messenger.SendMessageToUser(entry.UserID, text)
	}

	log.WithFields(log.Fields{
		"tournament": code,
		"players":    len(roster),
	}).Info("Напоминание о комнате разослано")
}

// sendPendingDigest шлёт операторам утреннюю сводку платежей,
// ждущих ручной проверки.
func (s *Scheduler) sendPendingDigest(ctx context.Context) {
	entries, err := s.pending.ListPending(ctx)
	if err != nil {
		log.WithError(err).Warn("Дайджест: не удалось получить очередь платежей")
		return
	}
	if len(entries) == 0 {
		return
	}

	text := fmt.Sprintf("📬 PENDING PAYMENTS DIGEST — %d waiting\n\n", len(entries))
	for i, e := range entries {
		text += fmt.Sprintf("%d. @%s — %s [%s], UTR %s\n",
			i+1, e.Username, common.FormatCurrency(e.Amount), e.TournamentCode, e.UTR)
	}
	text += "\nUse /confirm USER ID or /decline USER ID to clear the queue."

	for _, operatorID := range s.operatorIDs {
		s.messenger.SendMessageToUser(operatorID, text)
	}

	log.WithField("pending", len(entries)).Info("Дайджест платежей разослан операторам")
}
