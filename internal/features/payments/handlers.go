// Package payments — handlers.go обрабатывает команду /paid,
// инструкции по оплате и доставку запросов на проверку оператору.
package payments

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/common"
	"nomercyzone.in/tournament-bot/internal/features/tournaments"
)

// Handler обрабатывает платёжные команды игроков.
type Handler struct {
	service        *Service
	bot            *tgbotapi.BotAPI
	upiID          string // Реквизит для переводов
	supportContact string
	operatorIDs    []int64 // Получатели запросов на проверку
}

// NewHandler создаёт новый обработчик платежей.
func NewHandler(service *Service, bot *tgbotapi.BotAPI, upiID, supportContact string, operatorIDs []int64) *Handler {
	return &Handler{
		service:        service,
		bot:            bot,
		upiID:          upiID,
		supportContact: supportContact,
		operatorIDs:    operatorIDs,
	}
}

// Instructions возвращает текст платёжной инструкции по турниру.
func (h *Handler) Instructions(t *tournaments.Tournament, username string) string {
	return fmt.Sprintf(
		"💰 PAYMENT INSTRUCTIONS\n\n"+
			"🏆 Tournament: %s [%s]\n"+
			"💸 Entry Fee: %s\n\n"+
			"📱 UPI ID: %s\n"+
			"📝 Note: %s - @%s\n\n"+
			"📋 Steps:\n"+
			"1. Open any UPI app (PhonePe, GPay, Paytm)\n"+
			"2. Send %s to %s\n"+
			"3. Copy the UTR/Transaction ID\n"+
			"4. Reply: /paid %s YOUR_UTR_NUMBER\n"+
			"5. Wait for confirmation\n\n"+
			"⚠️ No refunds after room details are shared.\n"+
			"Need help? Contact %s",
		t.Name, t.Code, common.FormatCurrency(t.EntryFee),
		h.upiID, t.Name, username,
		common.FormatCurrency(t.EntryFee), h.upiID,
		t.Code, h.supportContact)
}

// HandlePaid обрабатывает /paid <tournament id> <utr>.
func (h *Handler) HandlePaid(ctx context.Context, msg *tgbotapi.Message, args []string) {
	chatID := msg.Chat.ID
	if len(args) < 2 {
		h.sendMessage(chatID, "❌ Usage: /paid TOURNAMENT_ID UTR_NUMBER\nExample: /paid AB12CD 123456789012")
		return
	}

	p, t, err := h.service.Submit(ctx, msg.From.ID, msg.From.UserName, args[0], args[1])
	switch {
	case err == nil:
	case errors.Is(err, common.ErrTournamentNotFound):
		h.sendMessage(chatID, "❌ Tournament not found. Check the ID in /matches.")
		return
	case errors.Is(err, common.ErrInvalidUTR):
		h.sendMessage(chatID, fmt.Sprintf("❌ Invalid UTR. It must be numbers only, at least %d digits.", h.service.utrMinLen))
		return
	case errors.Is(err, common.ErrAlreadyConfirmed):
		h.sendMessage(chatID, "✅ Your payment for this tournament is already confirmed. Use /join to take your slot!")
		return
	default:
		log.WithError(err).WithField("user_id", msg.From.ID).Error("Ошибка подачи платежа")
		h.sendMessage(chatID, "❌ Something went wrong, please try again later.")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf(
		"⏳ Payment submitted for verification!\n\n"+
			"🏆 %s [%s]\n💵 %s\n🔢 UTR: %s\n\n"+
			"You will be notified once the operator verifies the transfer.",
		t.Name, t.Code, common.FormatCurrency(p.Amount), p.UTR))
}

// HandleStatus обрабатывает /status <tournament id> — статус взноса игрока.
func (h *Handler) HandleStatus(ctx context.Context, msg *tgbotapi.Message, args []string) {
	chatID := msg.Chat.ID
	if len(args) < 1 {
		h.sendMessage(chatID, "❌ Usage: /status TOURNAMENT_ID\nExample: /status AB12CD")
		return
	}

	p, err := h.service.StatusFor(ctx, msg.From.ID, args[0])
	switch {
	case err == nil:
	case errors.Is(err, common.ErrTournamentNotFound):
		h.sendMessage(chatID, "❌ Tournament not found. Check the ID in /matches.")
		return
	case errors.Is(err, common.ErrNotFound):
		h.sendMessage(chatID, "🤷 No payment found for this tournament. Send /paid TOURNAMENT_ID UTR first.")
		return
	default:
		log.WithError(err).WithField("user_id", msg.From.ID).Error("Ошибка чтения статуса платежа")
		h.sendMessage(chatID, "❌ Something went wrong, please try again later.")
		return
	}

	switch p.Status {
	case StatusConfirmed:
		h.sendMessage(chatID, fmt.Sprintf(
			"✅ Payment of %s for %s is confirmed. Use /join %s if you haven't yet!",
			common.FormatCurrency(p.Amount), p.TournamentCode, p.TournamentCode))
	case StatusDeclined:
		h.sendMessage(chatID, fmt.Sprintf(
			"❌ Payment for %s was declined. Re-submit with /paid %s YOUR_UTR or contact %s.",
			p.TournamentCode, p.TournamentCode, h.supportContact))
	default:
		h.sendMessage(chatID, fmt.Sprintf(
			"⏳ Payment of %s for %s is pending verification. Hang tight!",
			common.FormatCurrency(p.Amount), p.TournamentCode))
	}
}

// NotifyOperator доставляет запрос на ручную проверку всем операторам
// с кнопками подтверждения и отклонения. Используется как
// OperatorNotifier сервиса.
func (h *Handler) NotifyOperator(req VerificationRequest) {
	text := fmt.Sprintf(
		"🔔 PAYMENT VERIFICATION REQUEST\n\n"+
			"👤 @%s (%d)\n"+
			"🏆 %s [%s]\n"+
			"💵 %s\n"+
			"🔢 UTR: %s\n\n"+
			"Verify the transfer in the bank app, then decide:",
		req.Username, req.UserID,
		req.TournamentName, req.TournamentCode,
		common.FormatCurrency(req.Amount), req.UTR)

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm",
				fmt.Sprintf("pay_confirm_%d_%s", req.UserID, req.TournamentCode)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Decline",
				fmt.Sprintf("pay_decline_%d_%s", req.UserID, req.TournamentCode)),
		),
	)

	for _, operatorID := range h.operatorIDs {
		msg := tgbotapi.NewMessage(operatorID, text)
		msg.ReplyMarkup = markup
		if _, err := h.bot.Send(msg); err != nil {
			log.WithError(err).WithField("operator", operatorID).Warn("Не удалось доставить запрос оператору")
		}
	}
}

// NotifyDecision сообщает игроку решение оператора.
func (h *Handler) NotifyDecision(userID int64, tournamentCode string, confirmed bool) {
	var text string
	if confirmed {
		text = fmt.Sprintf(
			"✅ Payment confirmed for tournament %s!\n\nUse /join %s to take your slot. See you in the lobby! 🔥",
			tournamentCode, tournamentCode)
	} else {
		text = fmt.Sprintf(
			"❌ Payment for tournament %s was declined.\n\n"+
				"The transfer could not be verified. Double-check the UTR and submit again with /paid, or contact %s.",
			tournamentCode, h.supportContact)
	}
	h.sendMessage(userID, text)
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
