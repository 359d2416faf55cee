package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/pkg/logger"
	"github.com/prohmpiriya/explore-events/pkg/redis"
)

const categoryCacheKeyPrefix = "category:"

// JSONCache is the part of the redis client used for caching
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// CachedCategoryRepository serves category lookups from redis, loading misses
// through the wrapped repository. Concurrent misses for one id share a load.
type CachedCategoryRepository struct {
	next  CategoryRepository
	cache JSONCache
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedCategoryRepository wraps next with a redis cache
func NewCachedCategoryRepository(next CategoryRepository, cache JSONCache, ttl time.Duration) *CachedCategoryRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedCategoryRepository{next: next, cache: cache, ttl: ttl}
}

// GetByID retrieves a category by ID
func (r *CachedCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	key := categoryCacheKeyPrefix + strconv.FormatInt(id, 10)

	var cached domain.Category
	err := r.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		logger.Get().Warn("category cache read failed", zap.Int64("category_id", id), zap.Error(err))
	}

	// Shared by every waiter on key, so one caller's cancellation must not abort it
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		c, err := r.next.GetByID(loadCtx, id)
		if err != nil {
			return nil, err
		}
		if err := r.cache.SetJSON(loadCtx, key, c, r.ttl); err != nil {
			logger.Get().Warn("category cache write failed", zap.Int64("category_id", id), zap.Error(err))
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	c := *v.(*domain.Category)
	return &c, nil
}
