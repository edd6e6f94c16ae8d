// Package config loads server settings from an optional YAML file overlaid by environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	Upload   UploadConfig   `yaml:"upload"`
	Report   ReportConfig   `yaml:"report"`
	SMTP     SMTPConfig     `yaml:"smtp"`
}

type AppConfig struct {
	Env string `yaml:"env"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type UploadConfig struct {
	// MaxBytes caps multipart uploads.
	MaxBytes int64 `yaml:"max_bytes"`
	// DefaultUser stamps feed rows when the request carries no username.
	DefaultUser string `yaml:"default_user"`
}

type ReportConfig struct {
	TemplateDir  string  `yaml:"template_dir"`
	StartY       float64 `yaml:"start_y"`
	LineHeight   float64 `yaml:"line_height"`
	BottomMargin float64 `yaml:"bottom_margin"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	// HeadOffice receives pending-complaint mails.
	HeadOffice string `yaml:"head_office"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		App: AppConfig{Env: "development"},
		HTTP: HTTPConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns:         20,
			MinConns:         2,
			StatementTimeout: 30 * time.Second,
		},
		JWT: JWTConfig{
			Secret: "your-secret-key-change-in-production",
			TTL:    12 * time.Hour,
		},
		Log:    LogConfig{Level: "info", Development: true},
		Upload: UploadConfig{MaxBytes: 20 << 20, DefaultUser: "SYSTEM"},
		Report: ReportConfig{
			TemplateDir:  "templates",
			StartY:       660,
			LineHeight:   19,
			BottomMargin: 30,
		},
		SMTP: SMTPConfig{Port: 587},
	}
}

// Load reads .env (if any), then the YAML file named by CONFIG_FILE (default config.yaml, optional),
// then applies environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	path := getEnv("CONFIG_FILE", "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults without touching the environment.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.App.Env = getEnv("APP_ENV", c.App.Env)
	c.HTTP.Port = getEnv("APP_PORT", c.HTTP.Port)
	c.HTTP.ReadTimeout = getEnvDuration("HTTP_READ_TIMEOUT", c.HTTP.ReadTimeout)
	c.HTTP.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", c.HTTP.WriteTimeout)

	c.Database.DSN = getEnv("DATABASE_URL", c.Database.DSN)
	c.Database.MaxConns = int32(getEnvInt("DB_MAX_CONNS", int(c.Database.MaxConns)))
	c.Database.MinConns = int32(getEnvInt("DB_MIN_CONNS", int(c.Database.MinConns)))
	c.Database.StatementTimeout = getEnvDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout)

	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.TTL = getEnvDuration("JWT_TTL", c.JWT.TTL)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Development = c.App.Env == "development"

	c.Upload.MaxBytes = int64(getEnvInt("UPLOAD_MAX_BYTES", int(c.Upload.MaxBytes)))
	c.Upload.DefaultUser = getEnv("UPLOAD_DEFAULT_USER", c.Upload.DefaultUser)
	c.Report.TemplateDir = getEnv("REPORT_TEMPLATE_DIR", c.Report.TemplateDir)

	c.SMTP.Host = getEnv("SMTP_HOST", c.SMTP.Host)
	c.SMTP.Port = getEnvInt("SMTP_PORT", c.SMTP.Port)
	c.SMTP.Username = getEnv("SMTP_USERNAME", c.SMTP.Username)
	c.SMTP.Password = getEnv("SMTP_PASSWORD", c.SMTP.Password)
	c.SMTP.From = getEnv("SMTP_FROM", c.SMTP.From)
	c.SMTP.HeadOffice = getEnv("SMTP_HEAD_OFFICE", c.SMTP.HeadOffice)
}

// Validate checks required settings.
func (c Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database dsn is required (DATABASE_URL)")
	}
	if c.Report.LineHeight <= 0 {
		return errors.New("report line_height must be positive")
	}
	if c.Report.StartY <= c.Report.BottomMargin {
		return errors.New("report start_y must be above bottom_margin")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
