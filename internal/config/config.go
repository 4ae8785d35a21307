package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds environment-based settings
type Config struct {
	DatabaseURL    string
	MigrationsPath string
	JWTSecret      string
	ServerAddress  string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL string

	// TickSpec is the cron expression driving the periodic scheduling pass.
	TickSpec string
	// CatchWindow is the trailing window the tick scans for schedules whose
	// fire time was missed by timing jitter. It should exceed the tick period.
	CatchWindow time.Duration

	// Timeline policy. These mirror the admin UI's observed behaviour and
	// are deliberately adjustable rather than baked in.
	TimelineCanvasMinutes         int
	TimelineTrailingCutoffMinutes int
	TimelineMinSlotMinutes        int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	jwt := os.Getenv("JWT_SECRET")
	if jwt == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}
	migrations := os.Getenv("MIGRATIONS_PATH")
	if migrations == "" {
		migrations = "./migrations"
	}
	tickSpec := os.Getenv("SCHEDULER_TICK_SPEC")
	if tickSpec == "" {
		tickSpec = "* * * * *"
	}
	catchSeconds, err := intEnv("SCHEDULER_CATCH_WINDOW_SECONDS", 70)
	if err != nil {
		return nil, err
	}
	canvas, err := intEnv("TIMELINE_CANVAS_MINUTES", 27*60)
	if err != nil {
		return nil, err
	}
	cutoff, err := intEnv("TIMELINE_TRAILING_CUTOFF_MINUTES", 3*60)
	if err != nil {
		return nil, err
	}
	minSlot, err := intEnv("TIMELINE_MIN_SLOT_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	return &Config{
		DatabaseURL:    dbURL,
		MigrationsPath: migrations,
		JWTSecret:      jwt,
		ServerAddress:  addr,

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),

		TickSpec:    tickSpec,
		CatchWindow: time.Duration(catchSeconds) * time.Second,

		TimelineCanvasMinutes:         canvas,
		TimelineTrailingCutoffMinutes: cutoff,
		TimelineMinSlotMinutes:        minSlot,
	}, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}
