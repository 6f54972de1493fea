package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port         string
	BindAddress  string
	BaseURL      string
	HostPassword string
	JWTSecret    string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBEnabled    bool
	RedisAddr    string
	SessionTTL   time.Duration
	TimeLimit    int
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		BindAddress:  getEnv("BIND_ADDRESS", "localhost"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
		HostPassword: getEnv("HOST_PASSWORD", "280226"),
		JWTSecret:    getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		DBHost:       getEnv("DB_HOST", ""),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "partyquiz"),
		DBPassword:   getEnv("DB_PASSWORD", "partyquiz123"),
		DBName:       getEnv("DB_NAME", "partyquiz"),
		DBEnabled:    os.Getenv("DB_HOST") != "",
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		SessionTTL:   getDurationEnv("SESSION_TTL", 2*time.Hour),
		TimeLimit:    getIntEnv("QUESTION_TIME_LIMIT", 30),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

// InitDB connects to postgres for the finished-game archive. Callers should
// only invoke it when cfg.DBEnabled is set.
func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// InitRedis returns a client for the live session store, or nil when no
// Redis address is configured (the in-memory store is used instead).
func InitRedis(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: "",
		DB:       0,
	})
}
