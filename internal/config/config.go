package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret          string
	StaffTokenTTL      time.Duration
	CustomerSessionTTL time.Duration

	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	MidtransServerKey       string
	MidtransBaseURL         string
	MidtransTimeout         time.Duration
	MidtransVerifySignature bool

	OTPTTL          time.Duration
	OTPWindow       time.Duration
	OTPMaxPerWindow int

	LogLevel  string
	LogFormat string

	SeedOwnerUsername string
	SeedOwnerPassword string
}

// Load reads configuration from the process environment. Call godotenv.Load first
// if a .env file should be honoured.
func Load() Config {
	return Config{
		Port:        getenv("PORT", "3000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:          getenv("JWT_SECRET", "warkop-dev-secret-change-me"),
		StaffTokenTTL:      getDuration("STAFF_TOKEN_TTL", 24*time.Hour),
		CustomerSessionTTL: getDuration("CUSTOMER_SESSION_TTL", 12*time.Hour),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_ORDER_TOPIC", "warkop.orders"),

		MidtransServerKey:       os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransBaseURL:         getenv("MIDTRANS_BASE_URL", "https://app.sandbox.midtrans.com/snap/v1"),
		MidtransTimeout:         getDuration("MIDTRANS_TIMEOUT", 10*time.Second),
		MidtransVerifySignature: getBool("MIDTRANS_VERIFY_SIGNATURE", true),

		OTPTTL:          getDuration("OTP_TTL", 5*time.Minute),
		OTPWindow:       getDuration("OTP_WINDOW", 10*time.Minute),
		OTPMaxPerWindow: getInt("OTP_MAX_PER_WINDOW", 3),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		SeedOwnerUsername: getenv("SEED_OWNER_USERNAME", "owner"),
		SeedOwnerPassword: getenv("SEED_OWNER_PASSWORD", "owner123"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
