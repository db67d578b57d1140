// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// Операторы турниров (через запятую). Только они могут создавать
	// турниры и подтверждать платежи.
	OperatorIDsRaw string  `envconfig:"OPERATOR_IDS" required:"true"`
	OperatorIDs    []int64 `envconfig:"-"` // заполним вручную
	// Канал сообщества. Участие в нём обязательно для работы с ботом,
	// туда же публикуются анонсы турниров.
	ChannelID  int64  `envconfig:"CHANNEL_ID" required:"true"`
	ChannelURL string `envconfig:"CHANNEL_URL" default:"https://t.me/NoMercyZoneBG"`

	// --- Payments ---
	// UPI-реквизиты для взносов. Бот НЕ проводит платежи сам: игрок платит
	// вручную и присылает номер UTR, оператор подтверждает руками.
	UPIID string `envconfig:"UPI_ID" required:"true"`
	// Минимальная длина UTR (только цифры). Банковские UTR обычно 12 цифр,
	// но встречаются и 10-значные.
	UTRMinLength   int    `envconfig:"UTR_MIN_LENGTH" default:"10"`
	SupportContact string `envconfig:"SUPPORT_CONTACT" default:"@Ghost_Commander"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"tournament_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	// Опорный часовой пояс: все «сегодня/неделя/месяц» в финансовых
	// отчётах и времена турниров считаются в нём.
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Asia/Kolkata"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Operator auth ---
	OperatorPasswordHash string `envconfig:"OPERATOR_PASSWORD_HASH" required:"true"`

	// --- Tournaments ---
	// За сколько минут до старта рассылать напоминание о скорой выдаче комнаты.
	RoomReminderMinutes int `envconfig:"ROOM_REMINDER_MINUTES" default:"10"`
	// Час ежедневного дайджеста неподтверждённых платежей (локальный пояс).
	PendingDigestHour int `envconfig:"PENDING_DIGEST_HOUR" default:"10"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureAdvisorEnabled   bool `envconfig:"FEATURE_ADVISOR_ENABLED" default:"true"`
	FeatureReferralsEnabled bool `envconfig:"FEATURE_REFERRALS_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Location возвращает опорный часовой пояс.
// Если пояс не загрузился — IST вручную (UTC+5:30).
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// IsOperator проверяет, входит ли пользователь в список операторов.
func (c *Config) IsOperator(userID int64) bool {
	for _, id := range c.OperatorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if c.ChannelID == 0 {
		return fmt.Errorf("CHANNEL_ID не задан или равен 0")
	}
	if len(c.OperatorIDs) == 0 {
		return fmt.Errorf("OPERATOR_IDS пуст")
	}
	if c.UTRMinLength <= 0 {
		return fmt.Errorf("UTR_MIN_LENGTH должен быть > 0")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.RoomReminderMinutes <= 0 {
		return fmt.Errorf("ROOM_REMINDER_MINUTES должен быть > 0")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.OperatorIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("OPERATOR_IDS parse: %w", err)
	}
	cfg.OperatorIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
