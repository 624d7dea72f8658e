package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/trunghai04/webmoi-sub001/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	HTTPPort       string
	GRPCHealthPort string
	RequestTimeout time.Duration
	CORSOrigins    []string

	DB    DB
	JWT   JWT
	Redis Redis
	Kafka Kafka
	Otel  Otel
}

type DB struct {
	database.Config
}

type JWT struct {
	AccessSecret string
	Issuer       string
	Audience     string
}

type Redis struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

type Kafka struct {
	Brokers     []string
	OrdersTopic string
}

func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 && k.OrdersTopic != "" }

type Otel struct {
	Enabled  bool
	Endpoint string
}

func Load(log *zap.Logger) *Config {
	cfg := &Config{
		HTTPPort:       getEnvDefault("HTTP_PORT", ":8080"),
		GRPCHealthPort: getEnvDefault("GRPC_HEALTH_PORT", ""),
		RequestTimeout: time.Duration(atoiDefault(os.Getenv("REQUEST_TIMEOUT_SECONDS"), 15)) * time.Second,
		CORSOrigins:    splitAndTrim(getEnvDefault("CORS_ORIGINS", "*")),
		DB: DB{
			Config: database.Config{
				Host:         getEnv("DB_HOST", log),
				Port:         getEnv("DB_PORT", log),
				User:         getEnv("DB_USER", log),
				Password:     getEnv("DB_PASSWORD", log),
				Name:         getEnv("DB_NAME", log),
				SSLMode:      getEnv("DB_SSLMODE", log),
				MaxOpenConns: atoiDefault(os.Getenv("DB_MAX_OPEN_CONNS"), 25),
				MaxIdleConns: atoiDefault(os.Getenv("DB_MAX_IDLE_CONNS"), 10),
			},
		},
		Redis: Redis{
			Enabled:    os.Getenv("REDIS_ENABLED") == "true",
			Addr:       getEnvDefault("REDIS_ADDR", "localhost:6379"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         atoiDefault(os.Getenv("REDIS_DB"), 0),
			TTLSeconds: atoiDefault(os.Getenv("CACHE_TTL_SECONDS"), 60),
		},
		Kafka: Kafka{
			Brokers:     splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			OrdersTopic: os.Getenv("KAFKA_TOPIC_ORDERS"),
		},
		Otel: Otel{
			Enabled:  os.Getenv("OTEL_ENABLED") == "true",
			Endpoint: getEnvDefault("OTEL_ENDPOINT", "localhost:4318"),
		},
	}
	return cfg
}

// LoadJWT is separate from Load because cmd/migrate has no use for token secrets.
func LoadJWT(log *zap.Logger) JWT {
	return JWT{
		AccessSecret: getEnv("JWT_ACCESS_SECRET", log),
		Issuer:       getEnvDefault("JWT_ISSUER", "storefront-auth"),
		Audience:     getEnvDefault("JWT_AUDIENCE", "storefront"),
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
