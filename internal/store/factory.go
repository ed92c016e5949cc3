package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/util"
)

// New creates the store selected by configuration
func New(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	backend := strings.ToLower(cfg.Backend)
	dir := util.ExpandHome(cfg.Dir)

	switch backend {
	case "memory":
		return NewMemoryStore(cfg.CapacityBytes), nil

	case "disk", "":
		return NewDiskStore(dir, cfg.CapacityBytes), nil

	case "layered":
		return NewLayeredStore(dir, cfg.CapacityBytes), nil

	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("store backend redis requires store.redis_url")
		}
		return NewRedisStore(cfg.RedisURL, namespace(cfg), cfg.CapacityBytes)

	case "minio", "s3":
		if cfg.MinioEndpoint == "" {
			return nil, fmt.Errorf("store backend minio requires store.minio_endpoint")
		}
		return NewObjectStore(ctx, ObjectStoreConfig{
			Endpoint:  cfg.MinioEndpoint,
			Region:    cfg.MinioRegion,
			Bucket:    cfg.MinioBucket,
			AccessKey: cfg.MinioAccess,
			SecretKey: cfg.MinioSecret,
			UseSSL:    cfg.MinioUseSSL,
			Prefix:    namespace(cfg),
		})

	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: memory, disk, layered, redis, minio)", cfg.Backend)
	}
}

func namespace(cfg model.StoreConfig) string {
	if cfg.Namespace == "" {
		return DefaultNamespace
	}
	return cfg.Namespace
}
