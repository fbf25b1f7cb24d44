package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and handed to the application.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Charge   ChargeConfig
	LogLevel string
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	AckRateLimit   int
	CORSOrigins    string
}

type PostgresConfig struct {
	User            string
	Password        string
	Host            string
	Port            string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN renders the connection string understood by the postgres driver.
func (c PostgresConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode
}

type RedisConfig struct {
	Host       string
	Port       string
	Password   string
	DB         int
	BalanceTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether ledger events should be published.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type ChargeConfig struct {
	AckURL string
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads the whole configuration from the environment.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           GetEnv("PORT", "8080"),
			RequestTimeout: GetDurationEnv("REQUEST_TIMEOUT", 5*time.Second),
			AckRateLimit:   GetIntEnv("ACK_RATE_LIMIT", 30),
			CORSOrigins:    GetEnv("CORS_ORIGINS", "*"),
		},
		Postgres: PostgresConfig{
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			Name:            GetEnv("DB_NAME", "ledgerpay"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:       GetEnv("REDIS_HOST", "localhost"),
			Port:       GetEnv("REDIS_PORT", "6379"),
			Password:   GetEnv("REDIS_PASSWORD", ""),
			DB:         GetIntEnv("REDIS_DB", 0),
			BalanceTTL: GetDurationEnv("BALANCE_CACHE_TTL", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: GetListEnv("KAFKA_BROKERS"),
			Topic:   GetEnv("KAFKA_TOPIC", "ledger-events"),
		},
		Charge: ChargeConfig{
			AckURL: GetEnv("ACK_URL", "http://localhost/charge_ack"),
		},
		LogLevel: GetEnv("LOG_LEVEL", "info"),
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetListEnv splits a comma separated variable, dropping blanks.
func GetListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
