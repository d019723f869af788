package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/flowstate/flowstate-dashboard/config"
	"github.com/flowstate/flowstate-dashboard/internal/adapters/memstore"
	redisadapter "github.com/flowstate/flowstate-dashboard/internal/adapters/redis"
	"github.com/flowstate/flowstate-dashboard/internal/ports"
)

// StorageDeps groups inputs for BuildStorage.
type StorageDeps struct {
	Config config.StorageConfig
	Redis  redis.UniversalClient // Required for the redis driver
	Logger *slog.Logger
}

// BuildStorage selects the per-client storage provider for the web dashboard.
//
//nolint:ireturn // the driver decides the concrete provider at runtime.
func BuildStorage(ctx context.Context, deps StorageDeps) (ports.StorageProvider, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch deps.Config.Driver {
	case config.StorageDriverMemory:
		logger.WarnContext(ctx, "using in-memory client storage; state is lost on restart")
		return memstore.NewProvider(), nil
	case config.StorageDriverRedis, "":
		if deps.Redis == nil {
			return nil, fmt.Errorf("storage driver %q requires a redis client", config.StorageDriverRedis)
		}
		return redisadapter.NewProvider(deps.Redis, deps.Config.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", deps.Config.Driver)
	}
}
