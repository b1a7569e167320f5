package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/studio-pms-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Cache key families for tenant-scoped views.
const (
	cacheCalendarPrefix     = "calendar"
	cacheCourseStatusPrefix = "course-status"
	cacheGenerationPrefix   = "views-gen"
)

// View keys embed the tenant generation; a write bumps it so entries stored
// under an older generation are never read again.
func calendarCacheKey(tenantID string, gen int64, studentID string, year, month int) string {
	return fmt.Sprintf("%s:%s:g%d:%s:%04d-%02d", cacheCalendarPrefix, tenantID, gen, studentID, year, month)
}

func courseStatusCacheKey(tenantID string, gen int64, fingerprint string, ref time.Time) string {
	return fmt.Sprintf("%s:%s:g%d:%s:%s", cacheCourseStatusPrefix, tenantID, gen, ref.Format("2006-01-02"), fingerprint)
}

func generationCacheKey(tenantID string) string {
	return fmt.Sprintf("%s:%s", cacheGenerationPrefix, tenantID)
}

func tenantCachePatterns(tenantID string) []string {
	return []string{
		fmt.Sprintf("%s:%s:*", cacheCalendarPrefix, tenantID),
		fmt.Sprintf("%s:%s:*", cacheCourseStatusPrefix, tenantID),
	}
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. Backend failures are logged and
// reported as a miss so views are recomputed from the store.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

// Set stores the value in cache; failures are logged only.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Generation returns the tenant's current view generation. Read it before
// loading from the store so a concurrent write moves later reads to a new key.
// Zero is returned when caching is off or the counter cannot be read.
func (s *CacheService) Generation(ctx context.Context, tenantID string) int64 {
	if !s.Enabled() {
		return 0
	}
	var gen int64
	if err := s.repo.Get(ctx, generationCacheKey(tenantID), &gen); err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache generation read failed", zap.String("tenant_id", tenantID), zap.Error(err))
		}
		return 0
	}
	return gen
}

// BumpGeneration retires every cached view of the tenant at once.
func (s *CacheService) BumpGeneration(ctx context.Context, tenantID string) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	gen, err := s.repo.Incr(ctx, generationCacheKey(tenantID))
	if err != nil {
		return 0, fmt.Errorf("bump view generation for %s: %w", tenantID, err)
	}
	return gen, nil
}

// InvalidateTenant drops every cached calendar and roster view of a tenant.
func (s *CacheService) InvalidateTenant(ctx context.Context, tenantID string) error {
	if !s.Enabled() {
		return nil
	}
	for _, pattern := range tenantCachePatterns(tenantID) {
		if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
			s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
			return err
		}
	}
	return nil
}
