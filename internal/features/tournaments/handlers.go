// Package tournaments — handlers.go формирует анонсы и рассылки
// и обрабатывает команду /matches.
package tournaments

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/common"
)

// Handler обрабатывает пользовательские запросы по турнирам.
type Handler struct {
	service   *Service
	bot       *tgbotapi.BotAPI
	channelID int64 // Канал сообщества для анонсов
}

// NewHandler создаёт новый обработчик турниров.
func NewHandler(service *Service, bot *tgbotapi.BotAPI, channelID int64) *Handler {
	return &Handler{service: service, bot: bot, channelID: channelID}
}

var categoryEmoji = map[Category]string{
	CategorySolo:  "🧍",
	CategoryDuo:   "👥",
	CategorySquad: "👨‍👩‍👧‍👦",
}

// AnnouncementText собирает пост анонса со структурированными полями.
func AnnouncementText(t *Tournament) string {
	return fmt.Sprintf(
		"🎮 TOURNAMENT TYPE: %s %s\n"+
			"🏆 %s\n"+
			"📅 Date: %s\n"+
			"🕘 Time: %s\n"+
			"📍 Map: %s\n"+
			"💰 Entry Fee: %s\n"+
			"🎁 Prize Pool: %s\n\n"+
			"🆔 Tournament ID: %s",
		categoryEmoji[t.Category], strings.ToUpper(string(t.Category)),
		t.Name,
		t.ScheduledAt.Format("2006-01-02"),
		t.ScheduledAt.Format("15:04"),
		t.MapName,
		common.FormatCurrency(t.EntryFee),
		t.Prize.Summary(),
		t.Code)
}

// RoomText собирает сообщение с данными комнаты для ростера.
func RoomText(t *Tournament) string {
	return fmt.Sprintf(
		"🎮 ROOM DETAILS DROPPED!\n\n"+
			"🏆 Tournament: %s\n"+
			"🆔 Room ID: %s\n"+
			"🔐 Password: %s\n\n"+
			"⚡ JOIN FAST! Match starting soon!\n"+
			"🚫 Late entry not allowed!\n\n"+
			"Good luck warriors! 🔥",
		t.Code, t.RoomID, t.RoomPassword)
}

// Announce публикует анонс в канал с кнопкой вступления.
func (h *Handler) Announce(t *Tournament) error {
	text := AnnouncementText(t) + "\n\n⏰ Room ID & Password will be shared 10 minutes before match starts!"

	msg := tgbotapi.NewMessage(h.channelID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎮 JOIN TOURNAMENT", "join_"+t.Code),
		),
	)
	if _, err := h.bot.Send(msg); err != nil {
		return fmt.Errorf("публикация анонса: %w", err)
	}
	return nil
}

// BroadcastRoom рассылает данные комнаты снимку ростера.
// Возвращает число успешных доставок: заблокировавшие бота
// участники не прерывают рассылку.
func (h *Handler) BroadcastRoom(t *Tournament, roster []RosterEntry) int {
	text := RoomText(t)
	sent := 0
	for _, entry := range roster {
		msg := tgbotapi.NewMessage(entry.UserID, text)
		if _, err := h.bot.Send(msg); err != nil {
			log.WithError(err).WithField("user_id", entry.UserID).Warn("Не удалось доставить данные комнаты")
			continue
		}
		sent++
	}
	return sent
}

// HandleMatches обрабатывает /matches — список открытых турниров
// с кнопками вступления.
func (h *Handler) HandleMatches(ctx context.Context, chatID int64) {
	active, err := h.service.ListActive(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка получения списка турниров")
		h.sendMessage(chatID, "❌ Could not load tournaments, try again later.")
		return
	}

	if len(active) == 0 {
		h.sendMessage(chatID, "😴 No open tournaments right now. Check back soon!")
		return
	}

	var sb strings.Builder
	sb.WriteString("🔥 OPEN TOURNAMENTS\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range active {
		sb.WriteString(fmt.Sprintf("%s %s [%s]\n📅 %s %s | 📍 %s | 💰 %s | 👥 %d joined\n\n",
			categoryEmoji[t.Category], t.Name, t.Code,
			t.ScheduledAt.Format("2006-01-02"), t.ScheduledAt.Format("15:04"),
			t.MapName, common.FormatCurrency(t.EntryFee), t.Participants))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎮 Join "+t.Code, "join_"+t.Code),
		))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
