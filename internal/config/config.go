package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	DefaultLocale string

	// Storage backend selection: "memory", "file" or "mongo".
	StorageBackend  string
	StorageMaxBytes int
	StorageFile     string
	MongoURI        string
	MongoDB         string

	// Debug-only migration hook: wipe and reseed when legacy document IDs
	// are detected. Never enable in production.
	ResetLegacyData bool

	// Capacity facts for instructor assignment validation.
	DefaultMonthlyCapacity int
	GlobalDailyLimit       int
}

func Load() *Config {
	// .env is a development convenience; absence is fine.
	if err := godotenv.Load(); err == nil {
		log.Println("config: loaded .env")
	}

	return &Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("ENV", "development"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "ko"),

		StorageBackend:  getEnv("STORAGE_BACKEND", "file"),
		StorageMaxBytes: getEnvInt("STORAGE_MAX_BYTES", 5*1024*1024),
		StorageFile:     getEnv("STORAGE_FILE", "attendance.json"),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGODB_DATABASE", "attendance"),

		ResetLegacyData: getEnvBool("RESET_LEGACY_DATA", false),

		DefaultMonthlyCapacity: getEnvInt("DEFAULT_MONTHLY_CAPACITY", 10),
		GlobalDailyLimit:       getEnvInt("GLOBAL_DAILY_LIMIT", 2),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN config: %s=%q is not a number, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN config: %s=%q is not a bool, using %v", key, v, fallback)
		return fallback
	}
	return b
}
