package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/store/db"
	"golang.org/x/sync/singleflight"

	"tally/core"
)

// Cache wraps a pool store with a short lived read cache. Writes go
// straight through and invalidate the cached entry.
func Cache(store core.IPoolStore, exp time.Duration) core.IPoolStore {
	return &cachePoolStore{
		IPoolStore: store,
		cache:      gcache.New(256).LRU().Expiration(exp).Build(),
		sf:         &singleflight.Group{},
	}
}

type cachePoolStore struct {
	core.IPoolStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cachePoolStore) Find(ctx context.Context, assetID string) (*core.Pool, error) {
	key := s.poolKey(assetID)
	if v, err := s.cache.Get(key); err == nil {
		if pool, ok := v.(*core.Pool); ok {
			return pool, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		pool, err := s.IPoolStore.Find(ctx, assetID)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, pool)
		return pool, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Pool), nil
}

func (s *cachePoolStore) Update(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	if err := s.IPoolStore.Update(ctx, tx, pool); err != nil {
		return err
	}
	s.cache.Remove(s.poolKey(pool.AssetID))
	return nil
}

func (s *cachePoolStore) poolKey(assetID string) string {
	return fmt.Sprintf("pool:asset:%s", assetID)
}
