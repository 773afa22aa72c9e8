// Package config provides centralized default values for Letter to You
package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

// loadEnvFile loads environment variables from .env file
func loadEnvFile() {
	envLoaded.Do(func() {
		loadEnvFileOnce()
	})
}

func loadEnvFileOnce() {
	file, err := os.Open(".env")
	if err != nil {
		// .env file is optional, don't error if it doesn't exist
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on first = sign
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Only set if not already set in environment
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func init() {
	// Ensure .env is loaded before any config access
	loadEnvFile()
}

// getEnvInt reads environment variable with fallback to default
func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvString reads environment variable with string fallback
func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// getEnvBool reads environment variable as boolean with fallback
func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration reads environment variable as duration with fallback
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		// Try as integer seconds
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

// Server Configuration
var (
	Port    = getEnvString("PORT", "8080")
	SiteURL = getEnvString("SITE_URL", "http://localhost:5173")
)

// Auth Configuration
var (
	JWTSecret       = getEnvString("JWT_SECRET", "")
	AccessTokenTTL  = getEnvDuration("ACCESS_TOKEN_TTL", 1*time.Hour)
	RefreshTokenTTL = getEnvDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour)
	SignOutTimeout  = getEnvDuration("SIGN_OUT_TIMEOUT", 3*time.Second)
)

// Database Configuration
var (
	SQLitePath    = getEnvString("SQLITE_PATH", "./data/letters.db")
	LibsqlURL     = getEnvString("LIBSQL_URL", "")
	LibsqlToken   = getEnvString("LIBSQL_AUTH_TOKEN", "")
	DBMaxOpenConn = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConn = getEnvInt("DB_MAX_IDLE_CONNS", 3)
)

// Payments Configuration
var (
	StripeSecretKey     = getEnvString("STRIPE_SECRET_KEY", "")
	StripeWebhookSecret = getEnvString("STRIPE_WEBHOOK_SECRET", "")
	StripePriceID       = getEnvString("STRIPE_PRICE_ID", "")
	PaymentsDisabled    = getEnvBool("PAYMENTS_DISABLED", false)

	// How many times verify-purchase re-reads the store while waiting for the
	// webhook-driven row to land, and the pause between attempts.
	VerifyRetryAttempts = getEnvInt("VERIFY_RETRY_ATTEMPTS", 3)
	VerifyRetryDelay    = getEnvDuration("VERIFY_RETRY_DELAY", 2*time.Second)
)

// Text Generation Configuration
var (
	AAIAPIKey        = getEnvString("AAI_API_KEY", "")
	LetterModel      = getEnvString("LETTER_MODEL", "anthropic/claude-3-5-sonnet")
	LetterMaxTokens  = getEnvInt("LETTER_MAX_TOKENS", 2000)
	CompareMaxTokens = getEnvInt("COMPARE_MAX_TOKENS", 1500)
	CheckinMaxTokens = getEnvInt("CHECKIN_MAX_TOKENS", 200)
)

// Session Continuity Configuration
var (
	CheckoutCookieTTL = getEnvDuration("CHECKOUT_COOKIE_TTL", 1*time.Hour)
	SessionBackupTTL  = getEnvDuration("SESSION_BACKUP_TTL", 1*time.Hour)
	InterviewTTL      = getEnvDuration("INTERVIEW_TTL", 4*time.Hour)
	LetterCacheTTL    = getEnvDuration("LETTER_CACHE_TTL", 5*time.Minute)
)

// Email Configuration
var (
	ResendAPIKey   = getEnvString("RESEND_API_KEY", "")
	EmailFrom      = getEnvString("EMAIL_FROM", "letters@lettertoyou.app")
	EmailFromName  = getEnvString("EMAIL_FROM_NAME", "Letter to You")
	SweepInterval  = getEnvDuration("EMAIL_SWEEP_INTERVAL", 15*time.Minute)
	SweepBatchSize = getEnvInt("EMAIL_SWEEP_BATCH_SIZE", 50)
)
