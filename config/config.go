// file: config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr  string
	DatabaseDSN string
	RedisAddr   string
	RedisPass   string
	JWTSecret   string

	// Ingestion
	ChallengeDir    string
	AssetDir        string
	IngestOnStartup bool

	// Competition window, used by time-based unlock conditions
	CompetitionStart time.Time
	CompetitionEnd   time.Time
}

// C holds the loaded configuration for the whole process.
var C Config

func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	C = Config{
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		DatabaseDSN:     os.Getenv("DATABASE_DSN"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:       os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		ChallengeDir:    getEnv("CHALLENGE_DIR", "./challenges"),
		AssetDir:        getEnv("ASSET_DIR", "./public/assets"),
		IngestOnStartup: getBoolEnv("INGEST_ON_STARTUP", true),
	}

	if C.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN environment variable not set")
	}

	var err error
	C.CompetitionStart, err = getTimeEnv("COMPETITION_START")
	if err != nil {
		return err
	}
	C.CompetitionEnd, err = getTimeEnv("COMPETITION_END")
	if err != nil {
		return err
	}
	if !C.CompetitionEnd.IsZero() && C.CompetitionEnd.Before(C.CompetitionStart) {
		return fmt.Errorf("COMPETITION_END is before COMPETITION_START")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getTimeEnv(key string) (time.Time, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339: %w", key, err)
	}
	return t, nil
}
