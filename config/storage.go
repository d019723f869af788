package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageDriver selects where per-client auth state is kept.
type StorageDriver string

const (
	// StorageDriverRedis keeps client state in Redis (production).
	StorageDriverRedis StorageDriver = "redis"
	// StorageDriverMemory keeps client state in process memory (development only).
	StorageDriverMemory StorageDriver = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageDriver.
func (d *StorageDriver) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "redis", "memory":
		*d = StorageDriver(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageDriver: %q (valid options: redis, memory)", v)
	}
}

// StorageConfig controls the durable client-side storage used by the web dashboard.
type StorageConfig struct {
	Driver StorageDriver `env:"DRIVER" envDefault:"redis"`

	// KeyPrefix namespaces client state keys in Redis.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"flowstate:client:"`

	// DefaultTTL is applied to stored tokens whose expiry cannot be read from the token itself.
	DefaultTTL time.Duration `env:"DEFAULT_TTL" envDefault:"24h"`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	if s.Driver == "" {
		s.Driver = StorageDriverRedis
	}
	s.KeyPrefix = strings.TrimSpace(s.KeyPrefix)
	if s.KeyPrefix == "" {
		s.KeyPrefix = "flowstate:client:"
	}
	if s.DefaultTTL <= 0 {
		s.DefaultTTL = 24 * time.Hour
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
