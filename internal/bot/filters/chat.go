// Package filters решает, кому бот вообще отвечает.
// Бот работает в личке и только для подписчиков канала сообщества.
package filters

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// PlayerDirectory — быстрая проверка «игрок уже известен базе».
// Запись в players появляется только после успешной проверки подписки,
// поэтому наличие записи избавляет от повторного похода в Telegram API.
type PlayerDirectory interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

type ChatFilter struct {
	channelID  int64
	channelURL string
	players    PlayerDirectory
	bot        *tgbotapi.BotAPI
	isOperator func(int64) bool
}

func NewChatFilter(channelID int64, channelURL string, players PlayerDirectory, bot *tgbotapi.BotAPI, isOperator func(int64) bool) *ChatFilter {
	return &ChatFilter{
		channelID:  channelID,
		channelURL: channelURL,
		players:    players,
		bot:        bot,
		isOperator: isOperator,
	}
}

// CheckAccess пропускает сообщение дальше, если его можно обрабатывать.
// Правила: только личка; операторы — всегда; остальные — при подписке
// на канал (сначала быстро по БД, потом через GetChatMember).
func (f *ChatFilter) CheckAccess(ctx context.Context, message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "ChatFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Warn("nil message.From (service/channel message?)")
		return false
	}
	if f.players == nil || f.bot == nil {
		log.WithField("component", "ChatFilter").Error("ChatFilter не сконфигурирован")
		return false
	}
	if f.channelID == 0 {
		log.WithField("component", "ChatFilter").Error("channelID is 0 (config bug)")
		return false
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	logger := log.WithFields(log.Fields{
		"component":  "ChatFilter",
		"chat_id":    chatID,
		"chat_type":  message.Chat.Type,
		"user_id":    userID,
		"channel_id": f.channelID,
	})

	// 1) Бот турнирный, работает только в личке. Группы и каналы игнорируем.
	if !message.Chat.IsPrivate() {
		logger.Debug("deny: not a private chat")
		return false
	}

	// 2) Операторы проходят всегда.
	if f.isOperator != nil && f.isOperator(userID) {
		logger.Debug("allow: operator")
		return true
	}

	// 3) Известный игрок: подписку уже проверяли при первом контакте.
	known, err := f.players.Exists(ctx, userID)
	if err != nil {
		logger.WithError(err).Error("player check failed (db)")
		return false
	}
	if known {
		logger.Debug("allow: private (known player)")
		return true
	}

	// 4) БД не знает пользователя: проверяем подписку через Telegram API.
	cm, err := f.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: f.channelID,
			UserID: userID, // <-- ВАЖНО: int64, без int(...)
		},
	})
	if err != nil {
		logger.WithError(err).Error("member check failed (telegram GetChatMember)")
		return false
	}

	switch cm.Status {
	case "creator", "administrator", "member", "restricted":
		logger.WithField("tg_status", cm.Status).Info("allow: private (channel subscriber)")
		return true

	default:
		logger.WithField("tg_status", cm.Status).Info("deny: private (not subscribed)")
		msg := tgbotapi.NewMessage(chatID,
			"🔒 JOIN OUR BATTLEGROUND FIRST!\n\n"+
				"Subscribe to the channel to use this bot:\n"+f.channelURL+
				"\n\nThen hit /start again, warrior!")
		if _, sendErr := f.bot.Send(msg); sendErr != nil {
			logger.WithError(sendErr).Warn("failed to send deny message")
		}
		return false
	}
}
