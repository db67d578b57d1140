// Package players — handlers.go обрабатывает команды:
// /start (регистрация), /history (история платежей), /refer (реферальный код).
package players

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/common"
)

// Handler обрабатывает команды игроков.
type Handler struct {
	service    *Service         // Сервис игроков
	bot        *tgbotapi.BotAPI // API Telegram для отправки ответов
	channelURL string           // Ссылка на канал сообщества
	botName    string           // Username бота для реферальных ссылок
}

// NewHandler создаёт новый обработчик команд игроков.
func NewHandler(service *Service, bot *tgbotapi.BotAPI, channelURL, botName string) *Handler {
	return &Handler{
		service:    service,
		bot:        bot,
		channelURL: channelURL,
		botName:    botName,
	}
}

// HandleStart обрабатывает /start — регистрирует игрока при первом контакте
// и показывает главное меню. Возвращает аргумент deep-link
// (реферальный код из t.me/bot?start=REF123456), если он был.
func (h *Handler) HandleStart(ctx context.Context, msg *tgbotapi.Message) string {
	user := msg.From
	player, err := h.service.EnsurePlayer(ctx, user.ID, user.UserName, user.FirstName)
	if err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("Ошибка регистрации игрока")
		h.sendMessage(msg.Chat.ID, "❌ Something went wrong, please try again later.")
		return ""
	}

	text := fmt.Sprintf(
		"🔥 Welcome to NoMercyZone, %s!\n\n"+
			"🎮 Daily BGMI tournaments with real cash prizes.\n\n"+
			"📋 /matches — see open tournaments\n"+
			"🎫 /join — enter a tournament\n"+
			"📜 /history — your payment history\n"+
			"🎁 /refer — invite friends, earn free entries\n"+
			"❓ /help — all commands\n\n"+
			"📢 Community: %s",
		player.DisplayName(), h.channelURL)

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyMarkup = mainMenu()
	if _, err := h.bot.Send(reply); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}

	return strings.TrimSpace(msg.CommandArguments())
}

// mainMenu — inline-кнопки главного меню (дублируют команды).
func mainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎮 Active Tournaments", "menu_matches"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📜 My History", "menu_history"),
			tgbotapi.NewInlineKeyboardButtonData("🎁 Invite Friends", "menu_refer"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❓ Help", "menu_help"),
		),
	)
}

// HandleHistory обрабатывает /history — показывает денормализованную
// историю платежей игрока (последние записи сверху).
func (h *Handler) HandleHistory(ctx context.Context, chatID, userID int64) {
	player, err := h.service.GetByUserID(ctx, userID)
	if err != nil {
		h.sendMessage(chatID, "❌ Send /start first to register.")
		return
	}

	if len(player.PaymentSummaries) == 0 {
		h.sendMessage(chatID, "📜 No payments yet. Join a tournament with /join!")
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 Your payment history:\n\n")
	for i := len(player.PaymentSummaries) - 1; i >= 0; i-- {
		s := player.PaymentSummaries[i]
		sb.WriteString(fmt.Sprintf("%s %s — %s (%s)\nUTR: %s\n\n",
			statusEmoji(s.Status), s.TournamentName, common.FormatCurrency(s.Amount), s.Status, s.UTR))
	}
	sb.WriteString(fmt.Sprintf("💰 Balance: %s | Total spent: %s",
		common.FormatCurrency(player.Balance), common.FormatCurrency(player.TotalSpent)))
	h.sendMessage(chatID, sb.String())
}

// HandleRefer обрабатывает /refer — показывает реферальный код,
// ссылку-приглашение и остаток бесплатных входов.
func (h *Handler) HandleRefer(ctx context.Context, chatID, userID int64) {
	player, err := h.service.GetByUserID(ctx, userID)
	if err != nil {
		h.sendMessage(chatID, "❌ Send /start first to register.")
		return
	}

	text := fmt.Sprintf(
		"🎁 Your referral code: %s\n\n"+
			"Share this link:\nhttps://t.me/%s?start=%s\n\n"+
			"Each friend who joins gives you 1 free tournament entry.\n"+
			"🎫 Free entries left: %d",
		player.ReferralCode, h.botName, player.ReferralCode, player.FreeEntries)
	h.sendMessage(chatID, text)
}

func statusEmoji(status string) string {
	switch status {
	case "confirmed":
		return "✅"
	case "declined":
		return "❌"
	default:
		return "⏳"
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
