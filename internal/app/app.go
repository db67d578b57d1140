// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры, планировщик и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"nomercyzone.in/tournament-bot/internal/bot"
	"nomercyzone.in/tournament-bot/internal/bot/filters"
	"nomercyzone.in/tournament-bot/internal/config"
	"nomercyzone.in/tournament-bot/internal/db/postgres"
	"nomercyzone.in/tournament-bot/internal/features/admission"
	"nomercyzone.in/tournament-bot/internal/features/advisor"
	"nomercyzone.in/tournament-bot/internal/features/operator"
	"nomercyzone.in/tournament-bot/internal/features/payments"
	"nomercyzone.in/tournament-bot/internal/features/players"
	"nomercyzone.in/tournament-bot/internal/features/referrals"
	"nomercyzone.in/tournament-bot/internal/features/tournaments"
	"nomercyzone.in/tournament-bot/internal/ids"
	"nomercyzone.in/tournament-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// codeStore объединяет проверки занятости кодов из двух репозиториев
// в один порт для генератора идентификаторов.
type codeStore struct {
	tournaments *tournaments.Repository
	players     *players.Repository
}

func (s codeStore) TournamentCodeExists(ctx context.Context, code string) (bool, error) {
	return s.tournaments.TournamentCodeExists(ctx, code)
}

func (s codeStore) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	return s.players.ReferralCodeExists(ctx, code)
}

// dmSender шлёт личные сообщения напрямую через Bot API.
// Планировщику нужен отправитель раньше, чем собран Bot.
type dmSender struct {
	api *tgbotapi.BotAPI
}

func (s dmSender) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := s.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	}
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc := cfg.Location()

	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Репозитории ===
	playerRepo := players.NewRepository(pool)
	tournamentRepo := tournaments.NewRepository(pool)
	paymentRepo := payments.NewRepository(pool)
	admissionRepo := admission.NewRepository(pool)
	referralRepo := referrals.NewRepository(pool)
	operatorRepo := operator.NewRepository(pool)

	// === 4. Сервисы ===
	generator := ids.NewGenerator(codeStore{tournamentRepo, playerRepo})

	playerService := players.NewService(playerRepo, generator)
	tournamentService := tournaments.NewService(tournamentRepo, generator, loc)
	referralService := referrals.NewService(referralRepo, playerService, cfg.FeatureReferralsEnabled)

	// Платёжный сервис уведомляет операторов через обработчик,
	// который создаётся позже: замыкание разрывает цикл.
	var paymentHandler *payments.Handler
	paymentService := payments.NewService(
		paymentRepo, tournamentService, playerService,
		func(req payments.VerificationRequest) { paymentHandler.NotifyOperator(req) },
		cfg.UTRMinLength, loc,
	)

	admissionService := admission.NewService(admissionRepo, playerService, tournamentService, paymentService)
	operatorService := operator.NewService(operatorRepo, cfg.OperatorPasswordHash, cfg.IsOperator)

	var adv advisor.Advisor
	if cfg.FeatureAdvisorEnabled {
		adv = advisor.NewHeuristic(loc)
	}

	// === 5. Обработчики ===
	playerHandler := players.NewHandler(playerService, botAPI, cfg.ChannelURL, botAPI.Self.UserName)
	tournamentHandler := tournaments.NewHandler(tournamentService, botAPI, cfg.ChannelID)
	paymentHandler = payments.NewHandler(paymentService, botAPI, cfg.UPIID, cfg.SupportContact, cfg.OperatorIDs)
	admissionHandler := admission.NewHandler(admissionService, paymentHandler, botAPI)

	// === 6. Планировщик задач ===
	scheduler, err := jobs.New(
		dmSender{botAPI}, tournamentService, paymentService,
		cfg.OperatorIDs, loc, cfg.RoomReminderMinutes, cfg.PendingDigestHour,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания планировщика: %w", err)
	}

	creationFlow := tournaments.NewCreationFlow(tournamentService)
	operatorHandler := operator.NewHandler(
		operatorService, playerService,
		tournamentService, tournamentHandler, creationFlow,
		paymentService, paymentHandler,
		adv, scheduler, botAPI, cfg.ChannelID, loc,
	)

	// === 7. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.ChannelID, cfg.ChannelURL, playerService, botAPI, cfg.IsOperator)

	// === 8. Собираем бота ===
	b := bot.New(
		botAPI, cfg,
		playerService, playerHandler,
		tournamentHandler, admissionHandler,
		paymentHandler, operatorHandler,
		referralService,
		chatFilter,
	)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Инициализируем систему миграций
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Players},
		{2, migration002Tournaments},
		{3, migration003Payments},
		{4, migration004Referrals},
		{5, migration005Operator},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Players = `
CREATE TABLE IF NOT EXISTS players (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255) NOT NULL DEFAULT '',
    first_name VARCHAR(255) NOT NULL DEFAULT '',
    is_banned BOOLEAN NOT NULL DEFAULT FALSE,
    balance BIGINT NOT NULL DEFAULT 0,
    referral_code VARCHAR(16) UNIQUE NOT NULL,
    free_entries INTEGER NOT NULL DEFAULT 0,
    tournaments_joined INTEGER NOT NULL DEFAULT 0,
    total_spent BIGINT NOT NULL DEFAULT 0,
    total_earned BIGINT NOT NULL DEFAULT 0,
    payment_summaries JSONB NOT NULL DEFAULT '[]'::jsonb,
    joined_at TIMESTAMP NOT NULL DEFAULT NOW(),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_players_user_id ON players(user_id);
CREATE INDEX IF NOT EXISTS idx_players_username ON players(LOWER(username));
CREATE INDEX IF NOT EXISTS idx_players_referral_code ON players(referral_code);
`

var migration002Tournaments = `
CREATE TABLE IF NOT EXISTS tournaments (
    id BIGSERIAL PRIMARY KEY,
    code VARCHAR(12) UNIQUE NOT NULL,
    name VARCHAR(255) NOT NULL,
    category VARCHAR(16) NOT NULL,
    scheduled_at TIMESTAMP NOT NULL,
    map_name VARCHAR(64) NOT NULL DEFAULT '',
    entry_fee BIGINT NOT NULL,
    prize JSONB NOT NULL,
    status VARCHAR(16) NOT NULL DEFAULT 'upcoming',
    confirmed_count INTEGER NOT NULL DEFAULT 0,
    room_id VARCHAR(64) NOT NULL DEFAULT '',
    room_password VARCHAR(64) NOT NULL DEFAULT '',
    ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
    ai_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tournaments_status ON tournaments(status);
CREATE TABLE IF NOT EXISTS tournament_participants (
    tournament_id BIGINT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
    user_id BIGINT NOT NULL REFERENCES players(user_id),
    via_free_entry BOOLEAN NOT NULL DEFAULT FALSE,
    joined_at TIMESTAMP NOT NULL DEFAULT NOW(),
    PRIMARY KEY (tournament_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_participants_user_id ON tournament_participants(user_id);
`

var migration003Payments = `
CREATE TABLE IF NOT EXISTS payments (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES players(user_id),
    -- Без FK на tournaments: платёж переживает удаление турнира
    -- и остаётся доступным для аудита по паре (user_id, tournament_id).
    tournament_id BIGINT NOT NULL,
    amount BIGINT NOT NULL,
    utr VARCHAR(64) NOT NULL,
    status VARCHAR(16) NOT NULL DEFAULT 'pending',
    confirmed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, tournament_id)
);
CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status);
CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments(created_at DESC);
`

var migration004Referrals = `
CREATE TABLE IF NOT EXISTS referrals (
    id BIGSERIAL PRIMARY KEY,
    referrer_user_id BIGINT NOT NULL REFERENCES players(user_id),
    referee_user_id BIGINT UNIQUE NOT NULL,
    code VARCHAR(16) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_referrals_referrer ON referrals(referrer_user_id);
`

var migration005Operator = `
CREATE TABLE IF NOT EXISTS operator_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    session_token VARCHAR(255) UNIQUE NOT NULL,
    authenticated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMP NOT NULL,
    last_activity TIMESTAMP NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_operator_sessions_user_id ON operator_sessions(user_id);
CREATE TABLE IF NOT EXISTS operator_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    attempt_time TIMESTAMP NOT NULL DEFAULT NOW(),
    success BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_login_attempts_user_time ON operator_login_attempts(user_id, attempt_time DESC);
`
