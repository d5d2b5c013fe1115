package lifescope

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the tunables of the request-scope lifecycle, read from
// the environment at bootstrap.
type Config struct {
	// ScopeTimeout is the idle time after which a request scope is evicted.
	ScopeTimeout time.Duration
	// SweepInterval is how often the eviction sweeper runs.
	SweepInterval time.Duration
	// Debug enables debug-level container logging.
	Debug bool
}

// LoadConfig reads .env (if present) and populates a Config from
// environment variables. Call once at bootstrap.
func LoadConfig(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist outside local development
	_ = godotenv.Load(files...)

	return &Config{
		ScopeTimeout:  envDuration("LIFESCOPE_SCOPE_TIMEOUT", DefaultScopeTimeout),
		SweepInterval: envDuration("LIFESCOPE_SWEEP_INTERVAL", DefaultSweepInterval),
		Debug:         envBool("LIFESCOPE_DEBUG", false),
	}
}

// ManagerOptions translates the config into scope manager options.
func (c *Config) ManagerOptions() []ManagerOption {
	return []ManagerOption{
		WithScopeTimeout(c.ScopeTimeout),
		WithSweepInterval(c.SweepInterval),
	}
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
