package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Token        TokenConfig
	Session      SessionConfig
	Email        EmailConfig
	Registration RegistrationConfig
	Staff        StaffConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	BaseURL            string // public base URL used in emailed links
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/flc?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TokenConfig holds access-token signing settings.
// MaxAgeDays is the single canonical token lifetime; earlier deployments
// mixed 7- and 30-day values, 30 is the one this service uses everywhere.
type TokenConfig struct {
	Secret     string
	MaxAgeDays int
}

// SessionConfig holds access-grant settings. The TTL is absolute, not sliding.
type SessionConfig struct {
	TTLDays           int
	ResendCooldownSec int // minimum gap between validation-email resends per address
}

// EmailConfig holds SMTP delivery settings. Leaving SMTPHost empty disables
// real delivery (messages are logged only).
type EmailConfig struct {
	FromAddress string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
}

// RegistrationConfig holds fee settings.
type RegistrationConfig struct {
	FeePerPerson decimal.Decimal // per-participant fee in USD
}

// StaffConfig holds staff API settings.
type StaffConfig struct {
	APIKey       string // required in X-Staff-Key for staff endpoints
	SummaryEmail string // recipient of roster summaries and combined reports
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenMaxAge, _ := strconv.Atoi(getEnv("TOKEN_MAX_AGE_DAYS", "30"))
	sessionTTL, _ := strconv.Atoi(getEnv("SESSION_TTL_DAYS", "30"))
	resendCooldown, _ := strconv.Atoi(getEnv("RESEND_COOLDOWN_SEC", "60"))
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))

	fee, err := decimal.NewFromString(getEnv("REG_FEE_PER_PERSON", "40.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid REG_FEE_PER_PERSON: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "flc"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Token: TokenConfig{
			Secret:     getEnv("TOKEN_SECRET", ""),
			MaxAgeDays: tokenMaxAge,
		},
		Session: SessionConfig{
			TTLDays:           sessionTTL,
			ResendCooldownSec: resendCooldown,
		},
		Email: EmailConfig{
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@flc.example.edu"),
			FromName:    getEnv("EMAIL_FROM_NAME", "FLC Registration"),
			SMTPHost:    getEnv("SMTP_HOST", ""),
			SMTPPort:    smtpPort,
			SMTPUser:    getEnv("SMTP_USER", ""),
			SMTPPass:    getEnv("SMTP_PASS", ""),
		},
		Registration: RegistrationConfig{
			FeePerPerson: fee,
		},
		Staff: StaffConfig{
			APIKey:       getEnv("STAFF_API_KEY", ""),
			SummaryEmail: getEnv("STAFF_SUMMARY_EMAIL", "studentorgs@flc.example.edu"),
		},
	}

	if cfg.Token.Secret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
