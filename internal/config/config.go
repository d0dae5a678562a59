package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Port        string
	MongoURI    string
	MongoDBName string

	JWTSecret   string
	TokenExpiry time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CatalogAPIKey  string
	CatalogBaseURL string

	ActivityFeedCap  int
	CodeExpiry       time.Duration
	QuizSweepEvery   time.Duration
	QuizTimeLimitMin int
}

// LoadConfig reads configuration from .env / environment variables.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, reading configuration from environment")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB", "reelrivals"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenExpiry: getDuration("TOKEN_EXPIRY", 72*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		CatalogAPIKey:  getEnv("CATALOG_API_KEY", ""),
		CatalogBaseURL: getEnv("CATALOG_BASE_URL", "https://api.themoviedb.org/3"),

		ActivityFeedCap:  getInt("ACTIVITY_FEED_CAP", 100),
		CodeExpiry:       getDuration("CODE_EXPIRY", 10*time.Minute),
		QuizSweepEvery:   getDuration("QUIZ_SWEEP_EVERY", time.Minute),
		QuizTimeLimitMin: getInt("QUIZ_TIME_LIMIT_MIN", 5),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logrus.Warnf("Invalid integer for %s, using default %d", key, fallback)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		logrus.Warnf("Invalid duration for %s, using default %s", key, fallback)
	}
	return fallback
}
