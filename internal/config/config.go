package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	SMTP         SMTPConfig
	Auth         AuthConfig
	Payment      PaymentConfig
	Refund       RefundPolicyConfig
	Notification NotificationConfig
}

type AppConfig struct {
	Port               string
	ClientURL          string
	Environment        string
	LogFilePath        string
	NotificationLog    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
	Driver     string // "postgres" or "memory"
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JWTSecret string
}

type PaymentConfig struct {
	Provider             string // "stripe" or "midtrans"
	StripeSecretKey      string
	MidtransServerKey    string
	MidtransIsProduction bool
}

type RefundPolicyConfig struct {
	WindowDays int
}

type NotificationConfig struct {
	AsyncEmail bool
	EmailTopic string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			NotificationLog:    getEnv("NOTIFICATION_LOG_FILE_PATH", "logs/notification.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Driver:     getEnv("STORAGE_DRIVER", "postgres"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "ReviewCredits"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "default_secret"),
		},
		Payment: PaymentConfig{
			Provider:             getEnv("PAYMENT_PROVIDER", "stripe"),
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			MidtransServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
			MidtransIsProduction: getEnvAsBool("MIDTRANS_IS_PRODUCTION", false),
		},
		Refund: RefundPolicyConfig{
			WindowDays: getEnvAsInt("REFUND_WINDOW_DAYS", 30),
		},
		Notification: NotificationConfig{
			AsyncEmail: getEnvAsBool("EMAIL_ASYNC", true),
			EmailTopic: getEnv("EMAIL_OUTBOX_TOPIC", "EMAIL_OUTBOX"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
