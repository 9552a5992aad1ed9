package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"

	"github.com/smartcompute/monitoring-system/internal/core/domain"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Triage TriageConfig
	Backup BackupConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=smartcompute"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// TriageConfig tunes the event pipeline and orchestrator thresholds.
type TriageConfig struct {
	Workers            int               `env:"TRIAGE_WORKERS,       default=8"`
	BusinessHoursStart int               `env:"BUSINESS_HOURS_START, default=9"`
	BusinessHoursEnd   int               `env:"BUSINESS_HOURS_END,   default=18"`
	AssetTiers         map[string]string `env:"ASSET_TIERS"` // "web-01:critical,db-02:high"
	AutoContainScore   float64           `env:"AUTO_CONTAIN_SCORE,   default=90"`
	EscalateScore      float64           `env:"ESCALATE_SCORE,       default=60"`
	IngestRatePerSec   float64           `env:"INGEST_RATE_PER_SEC,  default=50"`
	IngestBurst        int               `env:"INGEST_BURST,         default=100"`
}

// BackupConfig configures the disaster-recovery engine.
type BackupConfig struct {
	Dir        string   `env:"BACKUP_DIR,         default=/var/lib/smartcompute/backups"`
	Regions    []string `env:"BACKUP_REGIONS"` // replication target directories, comma separated
	KeyHex     string   `env:"BACKUP_KEY"`     // 32-byte key, hex encoded
	MaxRetries uint64   `env:"BACKUP_MAX_RETRIES, default=5"`
}

// BusinessContext materialises the asset criticality map from configuration.
func (t TriageConfig) BusinessContext() domain.BusinessContext {
	tiers := make(map[string]domain.CriticalityTier, len(t.AssetTiers))
	for asset, tier := range t.AssetTiers {
		tiers[asset] = domain.CriticalityTier(tier)
	}
	return domain.BusinessContext{
		AssetTiers:         tiers,
		BusinessHoursStart: t.BusinessHoursStart,
		BusinessHoursEnd:   t.BusinessHoursEnd,
	}
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
