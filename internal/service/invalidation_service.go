package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-pms-api/pkg/jobs"
)

const invalidationJobKind = "tenant_views"

type tenantCache interface {
	Enabled() bool
	BumpGeneration(ctx context.Context, tenantID string) (int64, error)
	InvalidateTenant(ctx context.Context, tenantID string) error
}

// InvalidationConfig sizes the background worker pool.
type InvalidationConfig struct {
	Workers    int
	QueueSize  int
	MaxRetries int
	RetryDelay time.Duration
	// SyncTimeout bounds the generation bump and any inline purge.
	SyncTimeout time.Duration
}

// ViewInvalidator retires cached calendar and roster views after attendance,
// enrollment or schedule writes. The tenant generation is bumped before the
// writer returns; deleting the retired keys runs on a jobs.Queue.
type ViewInvalidator struct {
	cache   tenantCache
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	cfg     InvalidationConfig
}

// NewViewInvalidator builds the invalidator and its queue. Call Start before use.
func NewViewInvalidator(cache tenantCache, metrics *MetricsService, logger *zap.Logger, cfg InvalidationConfig) *ViewInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = 2 * time.Second
	}
	v := &ViewInvalidator{cache: cache, metrics: metrics, logger: logger, cfg: cfg}
	v.queue = jobs.NewQueue("view-invalidation", v.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.QueueSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return v
}

// Start launches the workers.
func (v *ViewInvalidator) Start(ctx context.Context) {
	v.queue.Start(ctx)
}

// Stop waits for in-flight jobs to finish.
func (v *ViewInvalidator) Stop() {
	v.queue.Stop()
}

// TenantChanged retires the tenant's cached views. Reads that start after it
// returns never see a view computed before the write.
func (v *ViewInvalidator) TenantChanged(ctx context.Context, tenantID string) {
	if v == nil || v.cache == nil || !v.cache.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.cfg.SyncTimeout)
	defer cancel()

	if _, err := v.cache.BumpGeneration(ctx, tenantID); err != nil {
		// Without a new generation the old keys must go before we return.
		v.logger.Warn("view generation bump failed, purging inline", zap.String("tenant_id", tenantID), zap.Error(err))
		v.metrics.RecordInvalidation("inline")
		if err := v.purge(ctx, tenantID); err != nil {
			v.logger.Error("inline invalidation failed", zap.String("tenant_id", tenantID), zap.Error(err))
		}
		return
	}
	v.metrics.RecordInvalidation("bumped")

	job := jobs.Job{ID: uuid.NewString(), Kind: invalidationJobKind, Key: tenantID}
	err := v.queue.TryEnqueue(job)
	if err == nil {
		return
	}
	if !errors.Is(err, jobs.ErrQueueFull) {
		v.logger.Warn("invalidation queue unavailable, purging inline", zap.String("tenant_id", tenantID), zap.Error(err))
		if err := v.purge(ctx, tenantID); err != nil {
			v.logger.Error("inline invalidation failed", zap.String("tenant_id", tenantID), zap.Error(err))
		}
		return
	}
	// Retired keys expire with their TTL.
	v.logger.Debug("invalidation queue full, leaving retired keys to expire", zap.String("tenant_id", tenantID))
}

func (v *ViewInvalidator) handle(ctx context.Context, job jobs.Job) error {
	tenantID := job.Key
	if tenantID == "" {
		return fmt.Errorf("invalidation job %s: missing tenant", job.ID)
	}
	return v.purge(ctx, tenantID)
}

func (v *ViewInvalidator) purge(ctx context.Context, tenantID string) error {
	if err := v.cache.InvalidateTenant(ctx, tenantID); err != nil {
		v.metrics.RecordInvalidation("error")
		return err
	}
	v.metrics.RecordInvalidation("ok")
	return nil
}
