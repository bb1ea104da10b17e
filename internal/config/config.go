package config // package config loads application configuration from environment variables

import (
	"log"  // log is used to report configuration errors and halt execution
	"os"   // os provides access to environment variables
	"time" // time types for the party tuning knobs
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Database settings are required; the party
// tuning knobs fall back to the values the service was designed around.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	QueueLength   int           // steady-state length of each room's song queue
	ActiveWindow  time.Duration // heartbeat recency window for presence
	ScorerTimeout time.Duration // deadline for catalog calls made by the scorer
	RoomIdleTTL   time.Duration // idle time after which a room is reaped
	ReapInterval  time.Duration // how often the idle-room sweeper runs
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:    must("APP_ENV"),      // environment (dev/test/prod)
		Port:   must("APP_PORT"),     // port to bind the HTTP server
		DBUser: must("DB_USER"),      // database user
		DBPass: os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost: must("DB_HOST"),      // database host
		DBPort: must("DB_PORT"),      // database port
		DBName: must("DB_NAME"),      // database name

		QueueLength:   envInt("PARTY_QUEUE_LENGTH", 3),
		ActiveWindow:  envDur("PRESENCE_ACTIVE_WINDOW", 10*time.Second),
		ScorerTimeout: envDur("SCORER_TIMEOUT", 3*time.Second),
		RoomIdleTTL:   envDur("ROOM_IDLE_TTL", 24*time.Hour),
		ReapInterval:  envDur("ROOM_REAP_INTERVAL", 10*time.Minute),
	}
	if cfg.QueueLength < 1 {
		cfg.QueueLength = 1
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
