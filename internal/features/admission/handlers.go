// Package admission — handlers.go обрабатывает /join и кнопку вступления.
package admission

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/features/payments"
	"nomercyzone.in/tournament-bot/internal/features/tournaments"
)

// Handler обрабатывает попытки вступления.
type Handler struct {
	service  *Service
	payments *payments.Handler // Инструкции по оплате при PaymentRequired
	bot      *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик вступлений.
func NewHandler(service *Service, paymentHandler *payments.Handler, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, payments: paymentHandler, bot: bot}
}

// HandleJoin обрабатывает /join <tournament id> и callback join_<id>.
func (h *Handler) HandleJoin(ctx context.Context, chatID, userID int64, username, tournamentCode string) {
	outcome, t, err := h.service.Join(ctx, userID, tournamentCode)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка допуска")
		h.sendMessage(chatID, "❌ Something went wrong, please try again later.")
		return
	}

	switch outcome {
	case OutcomeJoined:
		h.sendMessage(chatID, joinedText(t, false))
	case OutcomeFreeEntryUsed:
		h.sendMessage(chatID, joinedText(t, true))
	case OutcomeAlreadyJoined:
		h.sendMessage(chatID, fmt.Sprintf(
			"ℹ️ You are already in %s [%s]. Room details arrive 10 minutes before start.",
			t.Name, t.Code))
	case OutcomePaymentRequired:
		h.sendMessage(chatID, h.payments.Instructions(t, username))
	case OutcomeBanned:
		h.sendMessage(chatID, "🚫 Your account is banned from tournaments. Contact support if you believe this is a mistake.")
	default:
		h.sendMessage(chatID, "❌ Tournament not found or no longer open. Check /matches for current tournaments.")
	}
}

func joinedText(t *tournaments.Tournament, freeEntry bool) string {
	head := "✅ You are in!"
	if freeEntry {
		head = "🎁 Free entry used — you are in!"
	}
	return fmt.Sprintf(
		"%s\n\n🏆 %s [%s]\n📅 %s at %s\n📍 %s\n\n⏰ Room ID & Password drop 10 minutes before start. Good luck! 🔥",
		head, t.Name, t.Code,
		t.ScheduledAt.Format("2006-01-02"), t.ScheduledAt.Format("15:04"),
		t.MapName)
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
