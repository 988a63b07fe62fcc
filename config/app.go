package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds every runtime setting. Values come from an optional YAML
// file named by APP_CONFIG, then environment variables override them.
type AppConfig struct {
	Port          string        `yaml:"port"`
	GinMode       string        `yaml:"gin_mode"`
	Environment   string        `yaml:"environment"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"-"`
	SessionHours  int           `yaml:"session_ttl_hours"`
	CookieSecure  bool          `yaml:"cookie_secure"`

	Database DatabaseConfig `yaml:"database"`
	Mail     MailConfig     `yaml:"mail"`

	// StatusTransitions restricts which statuses an administrator may move a
	// request to, keyed by the current status id. Empty means any status.
	StatusTransitions map[int][]int `yaml:"status_transitions"`
}

// DatabaseConfig describes how to reach the relational store.
type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	URL         string `yaml:"url"`
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	Name        string `yaml:"name"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	SSLMode     string `yaml:"sslmode"`
	AutoMigrate bool   `yaml:"auto_migrate"`
	DebugSQL    bool   `yaml:"debug_sql"`
}

// MailConfig holds SMTP settings for status change notifications.
type MailConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	From          string `yaml:"from"`
	SkipTLSVerify bool   `yaml:"skip_tls_verify"`
}

// Enabled reports whether enough SMTP settings exist to send mail.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.From != ""
}

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

func defaults() AppConfig {
	return AppConfig{
		Port:         "3000",
		GinMode:      "debug",
		Environment:  "development",
		SessionHours: 24,
		Database: DatabaseConfig{
			Driver:  DriverPostgres,
			Host:    "localhost",
			SSLMode: "disable",
		},
		Mail: MailConfig{Port: 587},
	}
}

// Load builds the configuration from APP_CONFIG (if set) and the environment.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := os.Getenv("APP_CONFIG"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(&cfg)

	if cfg.SessionHours <= 0 {
		cfg.SessionHours = 24
	}
	cfg.SessionTTL = time.Duration(cfg.SessionHours) * time.Hour

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Driver != DriverPostgres && cfg.Database.Driver != DriverMySQL {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want postgres or mysql)", cfg.Database.Driver)
	}
	if cfg.Database.Port == "" {
		if cfg.Database.Driver == DriverMySQL {
			cfg.Database.Port = "3306"
		} else {
			cfg.Database.Port = "5432"
		}
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = "development-session-secret"
	}

	return &cfg, nil
}

// IsProduction reports whether the app runs with production settings.
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production") || c.GinMode == "release"
}

func loadYAML(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.GinMode, "GIN_MODE")
	setString(&cfg.Environment, "ENVIRONMENT")
	setString(&cfg.SessionSecret, "SESSION_SECRET")
	setInt(&cfg.SessionHours, "SESSION_TTL_HOURS")
	setBool(&cfg.CookieSecure, "COOKIE_SECURE")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.Name, "DB_DATABASE")
	setString(&cfg.Database.User, "DB_USERNAME")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setBool(&cfg.Database.AutoMigrate, "DB_AUTO_MIGRATE")
	setBool(&cfg.Database.DebugSQL, "DEBUG_SQL")

	setString(&cfg.Mail.Host, "SMTP_HOST")
	setInt(&cfg.Mail.Port, "SMTP_PORT")
	setString(&cfg.Mail.User, "SMTP_USER")
	setString(&cfg.Mail.Password, "SMTP_PASS")
	setString(&cfg.Mail.From, "SMTP_FROM")
	if v := os.Getenv("SMTP_SKIP_TLS_VERIFY"); v != "" {
		cfg.Mail.SkipTLSVerify = v == "1" || strings.EqualFold(v, "true")
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
