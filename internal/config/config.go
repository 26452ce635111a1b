package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP / WebSocket listener
	ListenHost string
	ListenPort int

	// Frame loop
	FrameHz       int
	SnapshotEvery int // frames between snapshot broadcasts
	MaxMatches    int
	FinishedGrace time.Duration // how long a final match stays queryable

	// Match presets
	MatchPresetsPath string
	DefaultPreset    string

	// Progression ledger
	ProgressionDBPath string

	// Per-connection input throttle
	InputRatePerSec float64
	InputBurst      int

	// Discord
	DiscordWebhookURL string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenHost: envStr("LISTEN_HOST", "0.0.0.0"),
		ListenPort: envInt("LISTEN_PORT", 8780),

		FrameHz:       envInt("FRAME_HZ", 60),
		SnapshotEvery: envInt("SNAPSHOT_EVERY", 3),
		MaxMatches:    envInt("MAX_MATCHES", 64),
		FinishedGrace: time.Duration(envInt("FINISHED_GRACE_SEC", 120)) * time.Second,

		MatchPresetsPath: envStr("MATCH_PRESETS_PATH", "internal/config/match_presets.yaml"),
		DefaultPreset:    envStr("DEFAULT_PRESET", "arcade"),

		ProgressionDBPath: envStr("PROGRESSION_DB_PATH", "data/progression.db"),

		// Browser clients send at most one command per frame; the burst
		// absorbs a reconnecting client flushing its local queue.
		InputRatePerSec: envFloat("INPUT_RATE_PER_SEC", 30),
		InputBurst:      envInt("INPUT_BURST", 10),

		DiscordWebhookURL: envStr("DISCORD_WEBHOOK_URL", ""),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
