package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	JWTSecret string

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	// JWTExpireHours is the token lifetime in hours (default 24). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int

	// OpTimeoutSeconds bounds one lifecycle operation end to end (default 5).
	OpTimeoutSeconds int

	// NotifyBuffer is the dispatcher channel capacity (default 256).
	NotifyBuffer int

	// SMTPAddr, SMTPFrom, SMTPTo configure the email sender. Email delivery
	// is disabled when SMTPAddr is empty.
	SMTPAddr string
	SMTPFrom string
	SMTPTo   string

	// WhatsAppWebhookURL enables the WhatsApp gateway sender when set.
	WhatsAppWebhookURL string

	// ReminderCron is the schedule for maintenance/event reminders (default 8am daily).
	ReminderCron string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// CORSAllowedOrigins is a list of origins allowed for CORS.
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent.
	CORSAllowedOrigins []string
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "labops"),
		DBUser: getEnv("DB_USER", "labops"),
		DBPass: getEnv("DB_PASS", "labops"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret:      getEnv("JWT_SECRET", "supersecretkey"),
		Env:            getEnv("ENV", "dev"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),

		OpTimeoutSeconds: getEnvInt("OP_TIMEOUT_SECONDS", 5),
		NotifyBuffer:     getEnvInt("NOTIFY_BUFFER", 256),

		SMTPAddr: getEnv("SMTP_ADDR", ""),
		SMTPFrom: getEnv("SMTP_FROM", "labops@localhost"),
		SMTPTo:   getEnv("SMTP_TO", ""),

		WhatsAppWebhookURL: getEnv("WHATSAPP_WEBHOOK_URL", ""),

		ReminderCron: getEnv("REMINDER_CRON", "0 8 * * *"),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
