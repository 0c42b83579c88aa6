// Package config loads process-level settings from the environment, with an
// optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the settings used by the quantkit command and the monitoring
// server.
type Config struct {
	// MonitorPort is the port the monitoring server listens on. Zero picks a
	// random port.
	MonitorPort int

	// JournalPath is the path prefix of the journal database file. Empty
	// selects a generated name.
	JournalPath string

	// Strict makes controllers panic on use after dispose instead of
	// silently ignoring the call.
	Strict bool

	// ClickHouse connection settings. Used only when ClickHouseHost is
	// non-empty.
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		MonitorPort:        getEnvInt("QUANTKIT_MONITOR_PORT", 0),
		JournalPath:        getEnv("QUANTKIT_JOURNAL_PATH", ""),
		Strict:             getEnvBool("QUANTKIT_STRICT", false),
		ClickHouseHost:     getEnv("QUANTKIT_CLICKHOUSE_HOST", ""),
		ClickHousePort:     getEnvInt("QUANTKIT_CLICKHOUSE_PORT", 9000),
		ClickHouseDatabase: getEnv("QUANTKIT_CLICKHOUSE_DB", "default"),
		ClickHouseUser:     getEnv("QUANTKIT_CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("QUANTKIT_CLICKHOUSE_PASSWORD", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	return strings.ToLower(value) == "true" || value == "1"
}
