package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config carries every runtime setting of the receiver. It is built once in
// main and passed explicitly to the constructors that need it; nothing reads
// the environment after startup.
type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// APIKey is the static shared secret couriers present in the APIKEY
	// header on ingestion. Reads are deliberately not gated by it.
	APIKey string `env:"API_KEY, required"`

	// DataDir holds one JSON file per voucher.
	DataDir string `env:"DATA_DIR, default=./webhook_data"`

	// RecentLimit caps the recent-activity list served to the dashboard.
	RecentLimit int `env:"RECENT_LIMIT, default=10"`

	Redis   RedisConfig
	DiagLog DiagLogConfig
}

// RedisConfig configures the optional recent-activity cache. An empty Addr
// disables Redis entirely.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// DiagLogConfig configures the rotated diagnostic log that records
// non-standard requests (unexpected methods, unknown actions).
type DiagLogConfig struct {
	Path       string `env:"DIAG_LOG_PATH,        default=./webhook_error.log"`
	MaxSizeMB  int    `env:"DIAG_LOG_MAX_SIZE_MB, default=5"`
	MaxBackups int    `env:"DIAG_LOG_MAX_BACKUPS, default=3"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
