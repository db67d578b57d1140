// Package operator — handlers.go обрабатывает операторские команды.
// Все команды, кроме /login, требуют живой сессии.
package operator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/common"
	"nomercyzone.in/tournament-bot/internal/features/advisor"
	"nomercyzone.in/tournament-bot/internal/features/payments"
	"nomercyzone.in/tournament-bot/internal/features/players"
	"nomercyzone.in/tournament-bot/internal/features/tournaments"
)

// ReminderScheduler ставит одноразовое напоминание о комнате
// за несколько минут до старта турнира.
type ReminderScheduler interface {
	ScheduleRoomReminder(t *tournaments.Tournament)
}

// Handler обрабатывает операторские команды.
type Handler struct {
	auth        *Service
	players     *players.Service
	tournaments *tournaments.Service
	tHandler    *tournaments.Handler
	flow        *tournaments.CreationFlow
	payments    *payments.Service
	pHandler    *payments.Handler
	advisor     advisor.Advisor
	scheduler   ReminderScheduler
	bot         *tgbotapi.BotAPI
	channelID   int64
	loc         *time.Location

	mu          sync.Mutex
	suggestions map[int64]*advisor.Suggestion // Ожидающие одобрения рекомендации
}

// NewHandler создаёт обработчик операторских команд.
func NewHandler(
	auth *Service,
	playerService *players.Service,
	tournamentService *tournaments.Service,
	tournamentHandler *tournaments.Handler,
	flow *tournaments.CreationFlow,
	paymentService *payments.Service,
	paymentHandler *payments.Handler,
	adv advisor.Advisor,
	scheduler ReminderScheduler,
	bot *tgbotapi.BotAPI,
	channelID int64,
	loc *time.Location,
) *Handler {
	return &Handler{
		auth:        auth,
		players:     playerService,
		tournaments: tournamentService,
		tHandler:    tournamentHandler,
		flow:        flow,
		payments:    paymentService,
		pHandler:    paymentHandler,
		advisor:     adv,
		scheduler:   scheduler,
		bot:         bot,
		channelID:   channelID,
		loc:         loc,
		suggestions: make(map[int64]*advisor.Suggestion),
	}
}

// HandleCommand маршрутизирует операторскую команду.
// Возвращает false, если команда не операторская.
func (h *Handler) HandleCommand(ctx context.Context, msg *tgbotapi.Message, command string, args []string) bool {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if command == "login" {
		h.handleLogin(ctx, chatID, userID, args)
		return true
	}

	switch command {
	case "logout", "dashboard", "host", "quickhost", "aihost", "approveai",
		"aianalytics", "active", "droproom", "listplayers", "clear", "confirm",
		"decline", "ban", "unban", "datavault", "special", "complete",
		"cancelmatch", "pending":
	default:
		return false
	}

	if !h.requireAuth(ctx, chatID, userID) {
		return true
	}

	switch command {
	case "logout":
		if err := h.auth.Logout(ctx, userID); err != nil {
			h.sendMessage(chatID, "❌ Logout failed, try again.")
			return true
		}
		h.flow.Cancel(userID)
		h.sendMessage(chatID, "👋 Logged out.")
	case "dashboard":
		h.handleDashboard(ctx, chatID)
	case "host":
		h.handleHost(chatID, userID, args)
	case "quickhost":
		h.handleQuickHost(ctx, chatID, args)
	case "aihost":
		h.handleAIHost(ctx, chatID, userID, args)
	case "approveai":
		h.handleApproveAI(ctx, chatID, userID)
	case "aianalytics":
		h.handleAnalytics(ctx, chatID)
	case "active":
		h.handleActive(ctx, chatID)
	case "droproom":
		h.handleDropRoom(ctx, chatID, args)
	case "listplayers":
		h.handleListPlayers(ctx, chatID, args)
	case "clear":
		h.handleClear(ctx, chatID, args)
	case "confirm":
		h.handleDecision(ctx, chatID, args, true)
	case "decline":
		h.handleDecision(ctx, chatID, args, false)
	case "ban":
		h.handleBan(ctx, chatID, args, true)
	case "unban":
		h.handleBan(ctx, chatID, args, false)
	case "datavault":
		h.handleDataVault(ctx, chatID, args)
	case "special":
		h.handleSpecial(chatID, args)
	case "complete":
		h.handleFinish(ctx, chatID, args, tournaments.StatusCompleted)
	case "cancelmatch":
		h.handleFinish(ctx, chatID, args, tournaments.StatusCancelled)
	case "pending":
		h.handlePending(ctx, chatID)
	}
	return true
}

// HandleText продвигает диалог пошагового создания.
// Возвращает false, если у оператора нет активного диалога.
func (h *Handler) HandleText(ctx context.Context, msg *tgbotapi.Message) bool {
	userID := msg.From.ID
	if !h.flow.Active(userID) {
		return false
	}
	if !h.requireAuth(ctx, msg.Chat.ID, userID) {
		h.flow.Cancel(userID)
		return true
	}

	reply, created, err := h.flow.Advance(ctx, userID, msg.Text)
	if err != nil {
		log.WithError(err).Error("Ошибка создания турнира")
		h.sendMessage(msg.Chat.ID, "❌ Could not create tournament: "+userFacing(err))
		return true
	}
	if created != nil {
		h.finishCreated(msg.Chat.ID, created)
		return true
	}
	if reply != "" {
		h.sendMessage(msg.Chat.ID, reply)
		return true
	}
	return false
}

// HandleCallback обрабатывает кнопки подтверждения платежей:
// pay_confirm_<user>_<code> и pay_decline_<user>_<code>.
func (h *Handler) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) bool {
	data := cb.Data
	confirmed := strings.HasPrefix(data, "pay_confirm_")
	if !confirmed && !strings.HasPrefix(data, "pay_decline_") {
		return false
	}

	if !h.requireAuth(ctx, cb.Message.Chat.ID, cb.From.ID) {
		return true
	}

	var userID int64
	var code string
	if _, err := fmt.Sscanf(strings.TrimPrefix(strings.TrimPrefix(data, "pay_confirm_"), "pay_decline_"),
		"%d_%s", &userID, &code); err != nil {
		h.sendMessage(cb.Message.Chat.ID, "❌ Malformed payment callback.")
		return true
	}

	h.decide(ctx, cb.Message.Chat.ID, userID, code, confirmed)
	return true
}

func (h *Handler) handleLogin(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, "Usage: /login <password>")
		return
	}

	err := h.auth.Login(ctx, userID, args[0])
	switch {
	case err == nil:
		h.sendMessage(chatID, "🔓 Welcome back, operator. Session is valid for 24 hours.\nUse /dashboard for an overview.")
	case errors.Is(err, common.ErrNotOperator):
		h.sendMessage(chatID, "🚫 Operator only.")
	case errors.Is(err, common.ErrTooManyAttempts):
		h.sendMessage(chatID, "⛔ Too many failed attempts. Try again in an hour.")
	case errors.Is(err, common.ErrWrongPassword):
		h.sendMessage(chatID, "❌ Wrong password.")
	default:
		log.WithError(err).Error("Ошибка входа оператора")
		h.sendMessage(chatID, "❌ Login failed, try again later.")
	}
}

// requireAuth проверяет сессию и отвечает отказом при её отсутствии.
func (h *Handler) requireAuth(ctx context.Context, chatID, userID int64) bool {
	err := h.auth.Authorize(ctx, userID)
	if err == nil {
		return true
	}
	if errors.Is(err, common.ErrNotOperator) {
		h.sendMessage(chatID, "🚫 Operator only.")
	} else {
		h.sendMessage(chatID, "🔒 Session expired. Log in with /login <password>.")
	}
	return false
}

func (h *Handler) handleDashboard(ctx context.Context, chatID int64) {
	active, err := h.tournaments.ListActive(ctx)
	if err != nil {
		h.sendMessage(chatID, "❌ Could not load dashboard.")
		return
	}
	summary, err := h.payments.Summary(ctx, common.PeriodToday)
	if err != nil {
		h.sendMessage(chatID, "❌ Could not load dashboard.")
		return
	}

	var joined int64
	for _, t := range active {
		joined += t.Participants
	}

	h.sendMessage(chatID, fmt.Sprintf(
		"📊 OPERATOR DASHBOARD\n\n"+
			"🎮 Active tournaments: %d\n"+
			"👥 Players seated: %d\n"+
			"⏳ Pending payments: %d\n"+
			"💰 Revenue today: %s (%d confirmed)\n\n"+
			"Commands: /host /aihost /aianalytics /active /droproom /pending /datavault",
		len(active), joined, summary.Pending,
		common.FormatCurrency(summary.Revenue), summary.Confirmed))
}

func (h *Handler) handleHost(chatID, userID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, "Usage: /host <solo|duo|squad>")
		return
	}
	prompt, err := h.flow.Start(userID, args[0])
	if err != nil {
		h.sendMessage(chatID, "❌ Invalid tournament type! Use: solo, duo, or squad")
		return
	}
	h.sendMessage(chatID, prompt)
}

func (h *Handler) handleQuickHost(ctx context.Context, chatID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, "Usage: /quickhost <solo|duo|squad>")
		return
	}
	t, err := h.tournaments.QuickCreate(ctx, tournaments.Category(strings.ToLower(args[0])))
	if err != nil {
		h.sendMessage(chatID, "❌ Could not create tournament: "+userFacing(err))
		return
	}
	h.finishCreated(chatID, t)
}

func (h *Handler) handleAIHost(ctx context.Context, chatID, userID int64, args []string) {
	if h.advisor == nil {
		h.sendMessage(chatID, "🤖 AI suggestions are disabled. Use /host or /quickhost.")
		return
	}
	if len(args) < 1 {
		h.sendMessage(chatID, "Usage: /aihost <solo|duo|squad>")
		return
	}

	s, err := h.advisor.Suggest(ctx, tournaments.Category(strings.ToLower(args[0])))
	if err != nil {
		h.sendMessage(chatID, "❌ Invalid tournament type! Use: solo, duo, or squad")
		return
	}

	h.mu.Lock()
	h.suggestions[userID] = s
	h.mu.Unlock()

	h.sendMessage(chatID, fmt.Sprintf(
		"🤖 SUGGESTED %s TOURNAMENT\n\n"+
			"🏆 %s\n"+
			"📍 Map: %s\n"+
			"💰 Entry Fee: %s\n"+
			"🎁 Prize Type: %s\n"+
			"👥 Optimal participants: %d\n"+
			"📈 Confidence: %.0f%%\n\n"+
			"💡 %s\n\n"+
			"Approve with /approveai — nothing is created until you do.",
		strings.ToUpper(string(s.Category)), s.Name, s.MapName,
		common.FormatCurrency(s.EntryFee), s.PrizeType,
		s.OptimalParticipants, s.Confidence*100, s.Reasoning))
}

func (h *Handler) handleApproveAI(ctx context.Context, chatID, userID int64) {
	h.mu.Lock()
	s, ok := h.suggestions[userID]
	delete(h.suggestions, userID)
	h.mu.Unlock()

	if !ok {
		h.sendMessage(chatID, "ℹ️ No pending suggestion. Request one with /aihost <type>.")
		return
	}

	slot := h.tournaments.NextPrimeSlot(time.Now().In(h.loc))
	t, err := h.tournaments.Create(ctx, tournaments.CreateSpec{
		Name:         s.Name,
		Category:     s.Category,
		Date:         slot.Format("2006-01-02"),
		Time:         slot.Format("15:04"),
		MapName:      s.MapName,
		EntryFee:     s.EntryFee,
		Prize:        tournaments.DefaultPrize(s.Category, s.PrizeType),
		AIGenerated:  true,
		AIConfidence: s.Confidence,
	})
	if err != nil {
		h.sendMessage(chatID, "❌ Could not create tournament: "+userFacing(err))
		return
	}
	h.finishCreated(chatID, t)
}

func (h *Handler) handleAnalytics(ctx context.Context, chatID int64) {
	stats, err := h.tournaments.StatsByCategory(ctx)
	if err != nil {
		h.sendMessage(chatID, "❌ Could not load analytics.")
		return
	}
	if len(stats) == 0 {
		h.sendMessage(chatID, "📉 No tournaments hosted yet — nothing to analyze.")
		return
	}

	now := time.Now().In(h.loc)
	h.sendMessage(chatID, analyticsText(stats, now, h.tournaments.NextPrimeSlot(now), h.loc))
}

// finishCreated завершает любое создание: ответ оператору,
// анонс в канал, напоминание о комнате.
func (h *Handler) finishCreated(chatID int64, t *tournaments.Tournament) {
	h.sendMessage(chatID, fmt.Sprintf(
		"✅ TOURNAMENT CREATED SUCCESSFULLY!\n\n%s\n\n"+
			"⏰ Room details will be broadcast 10 minutes before start.\n"+
			"Use /droproom %s <room_id> <password> when ready.",
		tournaments.AnnouncementText(t), t.Code))

	if err := h.tHandler.Announce(t); err != nil {
		log.WithError(err).Warn("Не удалось опубликовать анонс")
		h.sendMessage(chatID, "⚠️ Tournament created, but channel announcement failed.")
	}

	if h.scheduler != nil {
		h.scheduler.ScheduleRoomReminder(t)
	}
}

func (h *Handler) handleActive(ctx context.Context, chatID int64) {
	active, err := h.tournaments.ListActive(ctx)
	if err != nil {
		h.sendMessage(chatID, "❌ Could not load tournaments.")
		return
	}
	if len(active) == 0 {
		h.sendMessage(chatID, "😴 No active tournaments.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🎮 ACTIVE TOURNAMENTS\n\n")
	for _, t := range active {
		sb.WriteString(fmt.Sprintf("[%s] %s (%s) — %s\n👥 %d joined | ✅ %d confirmed | 📅 %s\n\n",
			t.Code, t.Name, t.Category, t.Status,
			t.Participants, t.ConfirmedCount,
			common.FormatDateTime(t.ScheduledAt, h.loc)))
	}
	h.sendMessage(chatID, sb.String())
}

func (h *Handler) handleDropRoom(ctx context.Context, chatID int64, args []string) {
	if len(args) < 3 {
		h.sendMessage(chatID, "Usage: /droproom <tournament_id> <room_id> <password>\nExample: /droproom AB12CD 123456789 vip50")
		return
	}

	t, roster, err := h.tournaments.PublishRoom(ctx, args[0], args[1], args[2])
	if errors.Is(err, common.ErrTournamentNotFound) {
		h.sendMessage(chatID, "❌ Tournament not found or already finished!")
		return
	}
	if err != nil {
		log.WithError(err).Error("Ошибка публикации комнаты")
		h.sendMessage(chatID, "❌ Could not publish room, try again.")
		return
	}

	h.sendMessage(chatID, tournaments.RoomText(t))
	sent := h.tHandler.BroadcastRoom(t, roster)
	h.sendMessage(chatID, fmt.Sprintf("✅ Room details sent to %d/%d participants", sent, len(roster)))
}

func (h *Handler) handleListPlayers(ctx context.Context, chatID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, "Usage: /listplayers <tournament_id>")
		return
	}

	t, roster, err := h.tournaments.Roster(ctx, args[0])
	if errors.Is(err, common.ErrTournamentNotFound) {
		h.sendMessage(chatID, "❌ Tournament not found!")
		return
	}
	if err != nil {
		h.sendMessage(chatID, "❌ Could not load participants.")
		return
	}
	if len(roster) == 0 {
		h.sendMessage(chatID, "❌ No participants yet for "+t.Code+".")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👥 PARTICIPANTS — %s [%s]\n\n", t.Name, t.Code))
	for i, e := range roster {
		mark := "✅"
		if e.FreeEntry {
			mark = "🎁"
		}
		sb.WriteString(fmt.Sprintf("%d. %s (@%s) %s\n", i+1, e.FirstName, e.Username, mark))
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %d participants", len(roster)))
	h.sendMessage(chatID, sb.String())
}

func (h *Handler) handleClear(ctx context.Context, chatID int64, args []string) {
	if len(args) < 2 {
		h.sendMessage(chatID, "Usage: /clear tournament <id> | /clear player <id> <user>")
		return
	}

	switch args[0] {
	case "tournament":
		ok, err := h.tournaments.Delete(ctx, args[1])
		if err != nil {
			h.sendMessage(chatID, "❌ Could not delete tournament.")
			return
		}
		if !ok {
			h.sendMessage(chatID, "❌ Tournament not found!")
			return
		}
		h.sendMessage(chatID, "🗑 Tournament "+strings.ToUpper(args[1])+" deleted. Payments remain for audit.")
	case "player":
		if len(args) < 3 {
			h.sendMessage(chatID, "Usage: /clear player <tournament_id> <user>")
			return
		}
		p, err := h.players.Resolve(ctx, args[2])
		if err != nil {
			h.sendMessage(chatID, "❌ Player not found.")
			return
		}
		ok, err := h.tournaments.RemoveParticipant(ctx, args[1], p.UserID)
		if err != nil || !ok {
			h.sendMessage(chatID, "❌ Player is not in that tournament.")
			return
		}
		h.sendMessage(chatID, fmt.Sprintf("🗑 %s removed from %s. Payment untouched, no refund.",
			p.DisplayName(), strings.ToUpper(args[1])))
	default:
		h.sendMessage(chatID, "Usage: /clear tournament <id> | /clear player <id> <user>")
	}
}

func (h *Handler) handleDecision(ctx context.Context, chatID int64, args []string, confirmed bool) {
	if len(args) < 2 {
		cmd := "confirm"
		if !confirmed {
			cmd = "decline"
		}
		h.sendMessage(chatID, fmt.Sprintf("Usage: /%s <user> <tournament_id>", cmd))
		return
	}

	p, err := h.players.Resolve(ctx, args[0])
	if err != nil {
		h.sendMessage(chatID, "❌ Player not found.")
		return
	}
	h.decide(ctx, chatID, p.UserID, args[1], confirmed)
}

// decide выполняет решение оператора и уведомляет игрока.
func (h *Handler) decide(ctx context.Context, chatID, userID int64, code string, confirmed bool) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var ok bool
	var err error
	if confirmed {
		_, ok, err = h.payments.Confirm(ctx, userID, code)
	} else {
		ok, err = h.payments.Decline(ctx, userID, code)
	}

	if errors.Is(err, common.ErrTournamentNotFound) {
		h.sendMessage(chatID, "❌ Tournament not found!")
		return
	}
	if err != nil {
		log.WithError(err).Error("Ошибка решения по платежу")
		h.sendMessage(chatID, "❌ Could not apply the decision, try again.")
		return
	}
	if !ok {
		// Идемпотентный no-op: уже решено или записи нет.
		h.sendMessage(chatID, "ℹ️ Nothing to do: no matching pending payment for that pair.")
		return
	}

	if confirmed {
		h.sendMessage(chatID, fmt.Sprintf("✅ Payment confirmed for %d in %s.", userID, code))
	} else {
		h.sendMessage(chatID, fmt.Sprintf("❌ Payment declined for %d in %s.", userID, code))
	}
	h.pHandler.NotifyDecision(userID, code, confirmed)
}

func (h *Handler) handleBan(ctx context.Context, chatID int64, args []string, ban bool) {
	if len(args) < 1 {
		h.sendMessage(chatID, "Usage: /ban <user> | /unban <user>")
		return
	}

	p, err := h.players.Resolve(ctx, args[0])
	if err != nil {
		h.sendMessage(chatID, "❌ Player not found.")
		return
	}

	var ok bool
	if ban {
		ok, err = h.players.Ban(ctx, p.UserID)
	} else {
		ok, err = h.players.Unban(ctx, p.UserID)
	}
	if err != nil {
		h.sendMessage(chatID, "❌ Could not update the player.")
		return
	}
	if !ok {
		h.sendMessage(chatID, "ℹ️ Nothing changed — player already in that state.")
		return
	}
	if ban {
		h.sendMessage(chatID, "🚫 "+p.DisplayName()+" banned from tournaments.")
	} else {
		h.sendMessage(chatID, "✅ "+p.DisplayName()+" unbanned.")
	}
}

func (h *Handler) handleDataVault(ctx context.Context, chatID int64, args []string) {
	period := common.PeriodToday
	if len(args) > 0 {
		period = common.ParsePeriod(args[0])
	}

	summary, err := h.payments.Summary(ctx, period)
	if err != nil {
		h.sendMessage(chatID, "❌ Could not load financial data.")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf(
		"🏦 DATA VAULT — %s\n\n"+
			"💰 Revenue: %s\n"+
			"✅ Confirmed payments: %d\n"+
			"⏳ Pending decisions: %d\n"+
			"📅 Since: %s",
		strings.ToUpper(string(period)),
		common.FormatCurrency(summary.Revenue),
		summary.Confirmed, summary.Pending,
		common.FormatDateTime(summary.Since, h.loc)))
}

func (h *Handler) handlePending(ctx context.Context, chatID int64) {
	entries, err := h.payments.ListPending(ctx)
	if err != nil {
		h.sendMessage(chatID, "❌ Could not load pending payments.")
		return
	}
	if len(entries) == 0 {
		h.sendMessage(chatID, "✅ No pending payments. All caught up!")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⏳ PENDING PAYMENTS (%d)\n\n", len(entries)))
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("@%s (%d) — %s [%s]\n💵 %s | UTR %s\n→ /confirm %d %s\n\n",
			e.Username, e.UserID, e.TournamentName, e.TournamentCode,
			common.FormatCurrency(e.Amount), e.UTR, e.UserID, e.TournamentCode))
	}
	h.sendMessage(chatID, sb.String())
}

var specialHeaders = map[string]string{
	"winner":       "🏆 WINNER ANNOUNCEMENT 🏆",
	"announcement": "📢 ANNOUNCEMENT 📢",
	"promo":        "🎁 SPECIAL PROMO 🎁",
}

func (h *Handler) handleSpecial(chatID int64, args []string) {
	if len(args) < 2 {
		h.sendMessage(chatID, "Usage: /special <winner|announcement|promo> <text>")
		return
	}

	header, ok := specialHeaders[strings.ToLower(args[0])]
	if !ok {
		h.sendMessage(chatID, "❌ Unknown type. Use: winner, announcement, promo.")
		return
	}

	text := header + "\n\n" + strings.Join(args[1:], " ")
	msg := tgbotapi.NewMessage(h.channelID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка публикации в канал")
		h.sendMessage(chatID, "❌ Could not post to the channel.")
		return
	}
	h.sendMessage(chatID, "✅ Posted to the channel.")
}

func (h *Handler) handleFinish(ctx context.Context, chatID int64, args []string, status tournaments.Status) {
	if len(args) < 1 {
		h.sendMessage(chatID, "Usage: /complete <id> | /cancelmatch <id>")
		return
	}

	var ok bool
	var err error
	if status == tournaments.StatusCompleted {
		ok, err = h.tournaments.Complete(ctx, args[0])
	} else {
		ok, err = h.tournaments.Cancel(ctx, args[0])
	}
	if err != nil {
		h.sendMessage(chatID, "❌ Could not update the tournament.")
		return
	}
	if !ok {
		h.sendMessage(chatID, "ℹ️ Tournament not found or already finished.")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("🏁 Tournament %s marked %s.", strings.ToUpper(args[0]), status))
}

// userFacing переводит ошибки валидации в короткий текст для оператора.
func userFacing(err error) string {
	if errors.Is(err, common.ErrValidation) {
		return err.Error()
	}
	return "internal error, check logs"
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
