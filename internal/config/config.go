package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	defaultDatabaseDSN = "chest.db"
	defaultAuthSecret  = "dev-secret-key"
	defaultBaseURL     = "localhost:8081"
)

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

type Config struct {
	// Storage
	DatabaseDSN string `env:"DATABASE_URI"`

	// HTTP
	AuthSecret     string   `env:"AUTH_SECRET"`
	BaseURL        string   `env:"BASE_URL"`
	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:","`
	ShareRateLimit int      `env:"SHARE_RATE_LIMIT" envDefault:"60"`

	// Observability
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT"`
	OTELEndpoint   string `env:"OTEL_ENDPOINT"`

	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"30m"`
}

// NewConfig читает .env (если есть) и переменные окружения.
// Флаги привязываются отдельно через BindFlags и перекрывают env.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// BindFlags регистрирует флаги; значения из env становятся их умолчаниями.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "строка подключения к БД (postgres DSN или файл sqlite)")
	fs.StringVar(&c.AuthSecret, "auth-secret", c.AuthSecret, "секрет для проверки JWT (HS256)")
	fs.StringVarP(&c.BaseURL, "base-url", "a", c.BaseURL, "адрес сервера host:port")
	fs.StringSliceVar(&c.CORSOrigins, "cors-origins", c.CORSOrigins, "разрешённые CORS origin через запятую")
	fs.IntVar(&c.ShareRateLimit, "share-rate-limit", c.ShareRateLimit, "запросов в минуту с одного IP к публичным ссылкам (0 отключает лимит)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "уровень логирования: debug|info|warn|error")
	fs.BoolVar(&c.LogDevelopment, "log-development", c.LogDevelopment, "консольный формат логов")
	fs.StringVar(&c.OTELEndpoint, "otel-endpoint", c.OTELEndpoint, "OTLP/HTTP endpoint для трейсов (пусто: выключено)")
	fs.DurationVar(&c.StatsCacheTTL, "stats-cache-ttl", c.StatsCacheTTL, "время жизни кеша общей статистики (0 отключает кеш)")
}

// Finalize подставляет умолчания после разбора env и флагов.
func (c *Config) Finalize() {
	c.DatabaseDSN = strings.TrimSpace(c.DatabaseDSN)
	if c.DatabaseDSN == "" {
		c.DatabaseDSN = defaultDatabaseDSN
	}
	if c.AuthSecret == "" {
		c.AuthSecret = defaultAuthSecret
	}
	// BaseURL только в виде "address:port" (без схемы и пути), иначе умолчание
	if !hostPortRe.MatchString(c.BaseURL) {
		c.BaseURL = defaultBaseURL
	}
	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSOrigins = origins
	if c.ShareRateLimit < 0 {
		c.ShareRateLimit = 0
	}
}
