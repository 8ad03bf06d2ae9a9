package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram TelegramCfg `yaml:"telegram" envPrefix:"TELEGRAM_"`
	DB       DBCfg       `yaml:"db" envPrefix:"DB_"`
	Workshop WorkshopCfg `yaml:"workshop" envPrefix:"WORKSHOP_"`
	AntiSpam AntiSpamCfg `yaml:"anti_spam" envPrefix:"ANTISPAM_"`
	Feedback FeedbackCfg `yaml:"feedback" envPrefix:"FEEDBACK_"`
	Session  SessionCfg  `yaml:"session" envPrefix:"SESSION_"`
	Notify   NotifyCfg   `yaml:"notify" envPrefix:"NOTIFY_"`
	Metrics  MetricsCfg  `yaml:"metrics" envPrefix:"METRICS_"`
	Log      LogCfg      `yaml:"log" envPrefix:"LOG_"`
	Catalog  CatalogCfg  `yaml:"catalog"`
}

type TelegramCfg struct {
	Token string `yaml:"token" env:"TOKEN"`
	// OperatorChatID receives truncated error reports. Zero disables them.
	OperatorChatID int64   `yaml:"operator_chat_id" env:"OPERATOR_CHAT_ID"`
	StaffIDs       []int64 `yaml:"staff_ids" env:"STAFF_IDS" envSeparator:","`
}

type DBCfg struct {
	Driver         string        `yaml:"driver" env:"DRIVER"`
	DSN            string        `yaml:"dsn" env:"DSN"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
}

type WorkshopCfg struct {
	Phone     string `yaml:"phone" env:"PHONE"`
	Address   string `yaml:"address" env:"ADDRESS"`
	UTCOffset int    `yaml:"utc_offset" env:"UTC_OFFSET"`
	// ReviewsURL is an external review page linked under rating prompts. Empty hides the link.
	ReviewsURL string `yaml:"reviews_url" env:"REVIEWS_URL"`
	// Schedule maps mon..sun to "HH:MM-HH:MM"; a missing day is a day off.
	Schedule map[string]string `yaml:"schedule"`
}

type AntiSpamCfg struct {
	Threshold int           `yaml:"threshold" env:"THRESHOLD"`
	Window    time.Duration `yaml:"window" env:"WINDOW"`
	Mute      time.Duration `yaml:"mute" env:"MUTE"`
	Whitelist []string      `yaml:"whitelist" env:"WHITELIST" envSeparator:","`
	Blacklist []string      `yaml:"blacklist" env:"BLACKLIST" envSeparator:","`
}

type FeedbackCfg struct {
	InitialDelay   time.Duration `yaml:"initial_delay" env:"INITIAL_DELAY"`
	Interval       time.Duration `yaml:"interval" env:"INTERVAL"`
	CompletedAfter time.Duration `yaml:"completed_after" env:"COMPLETED_AFTER"`
}

type SessionCfg struct {
	TTL          time.Duration `yaml:"ttl" env:"TTL"`
	ReapInterval time.Duration `yaml:"reap_interval" env:"REAP_INTERVAL"`
}

type NotifyCfg struct {
	PerSecond int `yaml:"per_second" env:"PER_SECOND"`
}

type MetricsCfg struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

type LogCfg struct {
	Level string `yaml:"level" env:"LEVEL"`
	JSON  bool   `yaml:"json" env:"JSON"`
}

type CatalogCfg struct {
	Categories []CategoryCfg `yaml:"categories"`
}

type CategoryCfg struct {
	// Key defaults to a slug of Title.
	Key    string   `yaml:"key"`
	Title  string   `yaml:"title"`
	Prices []string `yaml:"prices"`
	// Keywords are lowercase stems that route free-text questions to this category.
	Keywords []string `yaml:"keywords"`
}

func Default() Config {
	return Config{
		DB: DBCfg{
			Driver:         "sqlite",
			DSN:            "workshop.db",
			ConnectTimeout: 30 * time.Second,
		},
		Workshop: WorkshopCfg{
			Phone:      "+7 (968) 396-91-52",
			Address:    "м. Ховрино, ТЦ \"Бусиново\", 1 этаж",
			UTCOffset:  3,
			ReviewsURL: "https://yandex.ru/maps/org/shveyny_hub/1233246900",
			Schedule: map[string]string{
				"mon": "10:00-19:50",
				"tue": "10:00-19:50",
				"wed": "10:00-19:50",
				"thu": "10:00-19:50",
				"fri": "10:00-19:00",
				"sat": "10:00-17:00",
			},
		},
		AntiSpam: AntiSpamCfg{
			Threshold: 5,
			Window:    time.Minute,
			Mute:      5 * time.Minute,
		},
		Feedback: FeedbackCfg{
			InitialDelay:   time.Minute,
			Interval:       time.Hour,
			CompletedAfter: 72 * time.Hour,
		},
		Session: SessionCfg{
			TTL:          24 * time.Hour,
			ReapInterval: 10 * time.Minute,
		},
		Notify: NotifyCfg{PerSecond: 25},
		Log:    LogCfg{Level: "info"},
		Catalog: CatalogCfg{Categories: []CategoryCfg{
			{Key: "jacket", Title: "🧥 Ремонт пиджака", Keywords: []string{"пиджак"}},
			{Key: "leather", Title: "🎒 Изделия из кожи", Keywords: []string{"кож"}},
			{Key: "curtains", Title: "🪟 Пошив штор", Keywords: []string{"штор"}},
			{Key: "coat", Title: "🧥 Ремонт куртки", Keywords: []string{"куртк", "пуховик"}},
			{Key: "fur", Title: "🐾 Шубы и дублёнки", Keywords: []string{"шуб", "дублён", "дублен", "мех"}},
			{Key: "outerwear", Title: "🧥 Плащ/пальто", Keywords: []string{"плащ", "пальто"}},
			{Key: "pants", Title: "👖 Брюки/джинсы", Keywords: []string{"брюк", "джинс"}},
			{Key: "dress", Title: "👗 Юбки/платья", Keywords: []string{"юбк", "плать"}},
		}},
	}
}

// Load layers defaults, the optional YAML file at path and the environment (including .env).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram token is required"))
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown db driver %q", c.DB.Driver))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db dsn is required"))
	}
	if c.AntiSpam.Threshold <= 0 {
		errs = append(errs, errors.New("anti_spam threshold must be positive"))
	}
	if c.AntiSpam.Window <= 0 || c.AntiSpam.Mute <= 0 {
		errs = append(errs, errors.New("anti_spam window and mute must be positive"))
	}
	if c.Feedback.Interval <= 0 {
		errs = append(errs, errors.New("feedback interval must be positive"))
	}
	if c.Workshop.UTCOffset < -12 || c.Workshop.UTCOffset > 14 {
		errs = append(errs, fmt.Errorf("workshop utc_offset %d out of range", c.Workshop.UTCOffset))
	}
	return errors.Join(errs...)
}

// Location is the workshop's fixed-offset time zone.
func (w *WorkshopCfg) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", w.UTCOffset), w.UTCOffset*60*60)
}
