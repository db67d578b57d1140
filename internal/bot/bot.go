// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go подключает обработчики фич и запускает polling.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/bot/filters"
	"nomercyzone.in/tournament-bot/internal/bot/middleware"
	"nomercyzone.in/tournament-bot/internal/common"
	"nomercyzone.in/tournament-bot/internal/config"
	"nomercyzone.in/tournament-bot/internal/features/admission"
	"nomercyzone.in/tournament-bot/internal/features/operator"
	"nomercyzone.in/tournament-bot/internal/features/payments"
	"nomercyzone.in/tournament-bot/internal/features/players"
	"nomercyzone.in/tournament-bot/internal/features/referrals"
	"nomercyzone.in/tournament-bot/internal/features/tournaments"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	playerHandler     *players.Handler
	tournamentHandler *tournaments.Handler
	admissionHandler  *admission.Handler
	paymentHandler    *payments.Handler
	operatorHandler   *operator.Handler

	playerService   *players.Service
	referralService *referrals.Service

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	playerService *players.Service,
	playerHandler *players.Handler,
	tournamentHandler *tournaments.Handler,
	admissionHandler *admission.Handler,
	paymentHandler *payments.Handler,
	operatorHandler *operator.Handler,
	referralService *referrals.Service,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:               api,
		cfg:               cfg,
		chatFilter:        chatFilter,
		rateLimiter:       middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		playerHandler:     playerHandler,
		tournamentHandler: tournamentHandler,
		admissionHandler:  admissionHandler,
		paymentHandler:    paymentHandler,
		operatorHandler:   operatorHandler,
		playerService:     playerService,
		referralService:   referralService,
		parser:            NewCommandParser(api.Self.UserName),
		inflight:          make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				b.rateLimiter.Close()
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	// Кнопки: вступление в турнир и платёжные решения оператора
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message

	// Логируем входящее
	middleware.LogMessage(message)

	// Проверяем доступ (только личка, подписка на канал)
	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	// Rate limiting
	if message.From != nil && !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	// EnsurePlayer — ошибки нельзя игнорировать, иначе потом будет "оно не работает"
	if _, err := b.playerService.EnsurePlayer(ctx, message.From.ID,
		message.From.UserName, message.From.FirstName,
	); err != nil {
		log.WithError(err).WithField("user_id", message.From.ID).Warn("EnsurePlayer failed")
	}

	// Парсим команду
	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	log.WithFields(log.Fields{
		"isCommand": isCommand,
		"cmd":       cmd,
		"args":      args,
	}).Debug("parsed command")

	if isCommand {
		b.routeCommand(ctx, message, cmd, args)
		return
	}

	// Не команда: возможно, оператор отвечает на шаг создания турнира
	b.operatorHandler.HandleText(ctx, message)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, cmd string, args []string) {
	chatID := message.Chat.ID
	userID := message.From.ID

	// Операторские команды (login, dashboard, host, confirm, ...)
	if b.operatorHandler.HandleCommand(ctx, message, cmd, args) {
		return
	}

	switch cmd {
	case "start":
		refCode := b.playerHandler.HandleStart(ctx, message)
		if refCode != "" {
			b.activateReferral(ctx, userID, refCode)
		}

	case "help":
		b.sendMessage(chatID, helpText)

	case "matches":
		b.tournamentHandler.HandleMatches(ctx, chatID)

	case "join":
		if len(args) < 1 {
			b.sendMessage(chatID, "❌ Usage: /join TOURNAMENT_ID\nSee open tournaments with /matches.")
			return
		}
		b.admissionHandler.HandleJoin(ctx, chatID, userID, message.From.UserName, args[0])

	case "paid":
		b.paymentHandler.HandlePaid(ctx, message, args)

	case "status":
		b.paymentHandler.HandleStatus(ctx, message, args)

	case "history", "matchhistory":
		b.playerHandler.HandleHistory(ctx, chatID, userID)

	case "refer":
		if !b.cfg.FeatureReferralsEnabled {
			b.sendMessage(chatID, "🎁 Referrals are temporarily disabled.")
			return
		}
		b.playerHandler.HandleRefer(ctx, chatID, userID)

	default:
		b.sendMessage(chatID, "🤔 Unknown command. Try /help.")
	}
}

// handleCallback разбирает нажатия inline-кнопок.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	middleware.LogCallback(cb)

	// Убираем «часики» на кнопке
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.WithError(err).Debug("callback answer failed")
	}

	data := cb.Data

	// join_<CODE> с анонса в канале: отвечаем игроку в личку,
	// cb.Message там указывает на пост канала.
	if code, ok := strings.CutPrefix(data, "join_"); ok && code != "" {
		b.admissionHandler.HandleJoin(ctx, cb.From.ID, cb.From.ID, cb.From.UserName, code)
		return
	}

	// Кнопки главного меню дублируют команды
	switch data {
	case "menu_matches":
		b.tournamentHandler.HandleMatches(ctx, cb.From.ID)
		return
	case "menu_history":
		b.playerHandler.HandleHistory(ctx, cb.From.ID, cb.From.ID)
		return
	case "menu_refer":
		b.playerHandler.HandleRefer(ctx, cb.From.ID, cb.From.ID)
		return
	case "menu_help":
		b.sendMessage(cb.From.ID, helpText)
		return
	}

	// pay_confirm_ / pay_decline_
	if b.operatorHandler.HandleCallback(ctx, cb) {
		return
	}

	log.WithField("data", data).Debug("unknown callback data")
}

// activateReferral обрабатывает deep-link /start <REF-код>.
func (b *Bot) activateReferral(ctx context.Context, userID int64, code string) {
	referrer, err := b.referralService.Activate(ctx, userID, code)
	switch {
	case err == nil:
		b.sendMessage(userID, fmt.Sprintf(
			"🎉 You joined via %s's invite! They earned a free tournament entry.",
			referrer.DisplayName()))
		b.SendMessageToUser(referrer.UserID, fmt.Sprintf(
			"🎁 Someone joined with your invite link! Free entries: check /refer. Keep sharing, %s!",
			referrer.DisplayName()))
	case errors.Is(err, common.ErrSelfReferral):
		b.sendMessage(userID, "😅 Nice try — you can't refer yourself.")
	case errors.Is(err, common.ErrAlreadyReferred):
		// повторный /start по той же ссылке — молча игнорируем
	case errors.Is(err, common.ErrReferralCodeUnknown):
		log.WithFields(log.Fields{"user_id": userID, "code": code}).Debug("неизвестный реферальный код")
	default:
		log.WithError(err).WithField("user_id", userID).Warn("Ошибка активации реферала")
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendMessageToUser отправляет сообщение пользователю (для напоминаний).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	} else {
		log.WithField("user_id", userID).Debug("message sent")
	}
}

const helpText = "📖 NO MERCY ZONE — COMMANDS\n\n" +
	"🎮 For players:\n" +
	"/matches — open tournaments\n" +
	"/join ID — take a slot\n" +
	"/paid ID UTR — submit your entry fee for verification\n" +
	"/status ID — payment status\n" +
	"/history — your payment history\n" +
	"/refer — invite friends, earn free entries\n\n" +
	"💬 Questions? Ask in the community channel."
