package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server              ServerConfig
	Database            DatabaseConfig
	Redis               RedisConfig
	Kafka               KafkaConfig
	PaymentService      ServiceConfig
	NotificationService ServiceConfig
	Checkout            CheckoutConfig
	Features            FeatureFlags
}

type ServerConfig struct {
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	PublicBaseURL string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	OrdersTopic   string
	PaymentsTopic string
	ConsumerGroup string
}

type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
	APIKey  string
}

// CheckoutConfig holds the pricing and wizard knobs of the checkout flow.
type CheckoutConfig struct {
	Currency               string
	CourierFee             float64
	TransferDiscountRate   float64
	DiscountPolicy         string
	BlurDebounce           time.Duration
	SubmitLockTTL          time.Duration
	ProvinceCostsFile      string
	DefaultCourierProvince string
}

type FeatureFlags struct {
	EnableOrderEvents     bool
	EnableRedisSessions   bool
	EnablePaymentConsumer bool
	EnableNotifications   bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:   time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout:  time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
			PublicBaseURL: getEnvString("PUBLIC_BASE_URL", "http://localhost:8084"),
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "acme"),
			Password:     getEnvString("DB_PASSWORD", "acme"),
			Name:         getEnvString("DB_NAME", "acme_checkout"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CHECKOUT_SESSION_TTL", 2*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrdersTopic:   getEnvString("KAFKA_ORDERS_TOPIC", "orders"),
			PaymentsTopic: getEnvString("KAFKA_PAYMENTS_TOPIC", "payments"),
			ConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "checkout-service"),
		},
		PaymentService: ServiceConfig{
			BaseURL: getEnvString("PAYMENT_SERVICE_URL", "http://localhost:8083"),
			Timeout: time.Duration(getEnvInt("PAYMENT_SERVICE_TIMEOUT", 30)) * time.Second,
			APIKey:  getEnvString("PAYMENT_SERVICE_API_KEY", ""),
		},
		NotificationService: ServiceConfig{
			BaseURL: getEnvString("NOTIFICATION_SERVICE_URL", "http://localhost:8085"),
			Timeout: time.Duration(getEnvInt("NOTIFICATION_SERVICE_TIMEOUT", 10)) * time.Second,
			APIKey:  getEnvString("NOTIFICATION_SERVICE_API_KEY", ""),
		},
		Checkout: CheckoutConfig{
			Currency:               getEnvString("CHECKOUT_CURRENCY", "ARS"),
			CourierFee:             getEnvFloat("CHECKOUT_COURIER_FEE", 5000),
			TransferDiscountRate:   getEnvFloat("CHECKOUT_TRANSFER_DISCOUNT_RATE", 0.10),
			DiscountPolicy:         getEnvString("CHECKOUT_DISCOUNT_POLICY", "exclusive"),
			BlurDebounce:           getEnvDuration("CHECKOUT_BLUR_DEBOUNCE", 600*time.Millisecond),
			SubmitLockTTL:          getEnvDuration("CHECKOUT_SUBMIT_LOCK_TTL", 2*time.Minute),
			ProvinceCostsFile:      getEnvString("CHECKOUT_PROVINCE_COSTS_FILE", ""),
			DefaultCourierProvince: getEnvString("CHECKOUT_COURIER_PROVINCE", "Santa Fe"),
		},
		Features: FeatureFlags{
			EnableOrderEvents:     getEnvBool("FEATURE_ORDER_EVENTS", true),
			EnableRedisSessions:   getEnvBool("FEATURE_REDIS_SESSIONS", true),
			EnablePaymentConsumer: getEnvBool("FEATURE_PAYMENT_CONSUMER", true),
			EnableNotifications:   getEnvBool("FEATURE_NOTIFICATIONS", true),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
