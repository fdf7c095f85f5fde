package initializers

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	AppEnv string

	DBDriver string
	DBURL    string

	JWTSecret string

	RedisAddr      string
	IdempotencyTTL time.Duration

	KafkaBrokers    string
	KafkaOrderTopic string

	SMTPAddress       string
	SMTPHost          string
	FromEmail         string
	FromEmailPassword string
	OwnerEmail        string
	NotifyTimeout     time.Duration
	FrontendURL       string
	PasswordResetTTL  time.Duration

	PaystackSecretKey string
	PaystackBaseURL   string
	PaymentTimeout    time.Duration
	Currency          string

	AllowedOrigins []string
}

// LoadEnv reads .env into the process environment when the file exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("Error loading .env file:", err)
	}
}

func LoadConfig() Config {
	LoadEnv()
	return Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),

		DBDriver: getEnv("DB_DRIVER", "mysql"),
		DBURL:    os.Getenv("DB_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "order.created"),

		SMTPAddress:       os.Getenv("SMTP_ADDRESS"),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		FromEmail:         os.Getenv("FROM_EMAIL"),
		FromEmailPassword: os.Getenv("FROM_EMAIL_PASSWORD"),
		OwnerEmail:        os.Getenv("OWNER_EMAIL"),
		NotifyTimeout:     getDuration("NOTIFY_TIMEOUT", 10*time.Second),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:4200"),
		PasswordResetTTL:  getDuration("PASSWORD_RESET_TTL", time.Hour),

		PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		PaymentTimeout:    getDuration("PAYMENT_TIMEOUT", 15*time.Second),
		Currency:          getEnv("CURRENCY", "GHS"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:4200")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Invalid duration for %s: %q, using %s", key, raw, fallback)
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
