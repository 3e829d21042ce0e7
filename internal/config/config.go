// Package config loads runtime settings from the environment, with a
// .env file honored for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds every runtime setting for the transport server.
type Config struct {
	ListenAddr string

	// StoreBackend selects "memory" or "mongo".
	StoreBackend string
	MongoURI     string
	MongoDB      string

	LockTimeout          time.Duration
	MaintenanceLookahead time.Duration

	JWTSecret string
	JWTExpiry time.Duration

	MQTTBroker   string
	MQTTClientID string

	RateLimitRequests int
	RateLimitWindow   int // seconds

	LogLevel string
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}

	return &Config{
		ListenAddr:           getEnv("LISTEN_ADDR", ":8080"),
		StoreBackend:         getEnv("STORE_BACKEND", "memory"),
		MongoURI:             getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:              getEnv("MONGODB_DATABASE", "school_transport"),
		LockTimeout:          getDuration("LOCK_TIMEOUT", 2*time.Second),
		MaintenanceLookahead: getDuration("MAINTENANCE_LOOKAHEAD", 7*24*time.Hour),
		JWTSecret:            getEnv("JWT_SECRET", "default-secret-key-change-in-production"),
		JWTExpiry:            getDuration("JWT_EXPIRY", 24*time.Hour),
		MQTTBroker:           getEnv("MQTT_BROKER", ""),
		MQTTClientID:         getEnv("MQTT_CLIENT_ID", "school-transport"),
		RateLimitRequests:    getInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:      getInt("RATE_LIMIT_WINDOW", 60),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.WithField("key", key).Warnf("Invalid integer %q, using default %d", v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.WithField("key", key).Warnf("Invalid duration %q, using default %s", v, fallback)
		return fallback
	}
	return d
}
