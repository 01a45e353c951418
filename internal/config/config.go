package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the tracker.
// Every field has a working default so the tool runs out of the box;
// the Alpaca credentials are only needed when live prices are requested.
type Config struct {
	StateFile     string  // CSV file holding the portfolio and cash snapshot
	TradeLogFile  string  // Append-only CSV of executed sells
	LogFile       string  // Rotating application log
	MaxLogSizeMB  int64   // Log rotation threshold
	MaxLogBackups int     // Rotated files to keep
	StartingCash  float64 // Bootstrap cash when no state file exists
}

// Load initializes the configuration.
// It tries to read a .env file and falls back to the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	// Price lookups need Alpaca market data credentials. Missing keys are not
	// fatal: a failed quote is treated as a hold downstream, so we only warn.
	for _, key := range []string{"APCA_API_KEY_ID", "APCA_API_SECRET_KEY"} {
		if os.Getenv(key) == "" {
			log.Printf("Warning: %s not set, live price lookups will fail (holdings are kept on failed quotes)", key)
		}
	}

	return &Config{
		StateFile:     getEnv("FOLIO_STATE_FILE", "portfolio.csv"),
		TradeLogFile:  getEnv("FOLIO_TRADE_LOG_FILE", "trade_log.csv"),
		LogFile:       getEnv("FOLIO_LOG_FILE", "folio_tracker.log"),
		MaxLogSizeMB:  int64(getEnvAsInt("FOLIO_MAX_LOG_SIZE_MB", 5)),
		MaxLogBackups: getEnvAsInt("FOLIO_MAX_LOG_BACKUPS", 3),
		StartingCash:  getEnvAsFloat64("FOLIO_STARTING_CASH", 100.0),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
