package config

import (
	"context"

	"github.com/matzehuels/speakerbox/pkg/cache"
	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/extract"
	"github.com/matzehuels/speakerbox/pkg/store"
)

// OpenCache creates the configured cache backend.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			Prefix:   c.Cache.Redis.Prefix,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", c.Cache.Redis.Addr)
		}
		return rc, nil
	default:
		fc, err := cache.NewFileCache(c.Cache.Dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "open cache dir %s", c.Cache.Dir)
		}
		return fc, nil
	}
}

// OpenStore creates the configured calculation store.
func (c Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Backend {
	case BackendMemory:
		return store.NewMemoryStore(), nil
	case BackendMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        c.Store.Mongo.URI,
			Database:   c.Store.Mongo.Database,
			Collection: c.Store.Mongo.Collection,
		})
	default:
		fs, err := store.NewFileStore(c.Store.Path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "open store %s", c.Store.Path)
		}
		return fs, nil
	}
}

// ExtractClient creates a parameter extraction client. apiKey overrides the
// configured key when non-empty.
func (c Config) ExtractClient(apiKey string, ch cache.Cache) *extract.Client {
	if apiKey == "" {
		apiKey = c.Extract.APIKey
	}
	return extract.NewClient(apiKey,
		extract.WithEndpoint(c.Extract.Endpoint),
		extract.WithModel(c.Extract.Model),
		extract.WithCache(ch, nil),
	)
}
