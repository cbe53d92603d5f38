package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/verdantia/storefront-backend/pkg/logger"
)

// EngineEvicter drops idle in-memory carts.
type EngineEvicter interface {
	EvictIdle(olderThan time.Duration) int
}

// BlobPurger deletes persisted carts not written since cutoff.
type BlobPurger interface {
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// MaintenanceRecorder receives job results.
type MaintenanceRecorder interface {
	EnginesEvicted(n int)
	BlobsPurged(n int64)
}

type CartMaintenanceConfig struct {
	IdleTimeout   time.Duration
	BlobRetention time.Duration
	EvictSpec     string
	PurgeSpec     string
}

// CartMaintenanceScheduler evicts idle cart engines and purges stale blobs
type CartMaintenanceScheduler struct {
	cron     *cron.Cron
	evicter  EngineEvicter
	purger   BlobPurger
	recorder MaintenanceRecorder
	cfg      CartMaintenanceConfig
	now      func() time.Time
}

// NewCartMaintenanceScheduler builds the scheduler. purger and recorder may
// be nil; blob purging only runs for stores that support it.
func NewCartMaintenanceScheduler(evicter EngineEvicter, purger BlobPurger, recorder MaintenanceRecorder, cfg CartMaintenanceConfig) *CartMaintenanceScheduler {
	if cfg.EvictSpec == "" {
		cfg.EvictSpec = "@every 5m"
	}
	if cfg.PurgeSpec == "" {
		cfg.PurgeSpec = "30 3 * * *"
	}
	return &CartMaintenanceScheduler{
		cron:     cron.New(),
		evicter:  evicter,
		purger:   purger,
		recorder: recorder,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *CartMaintenanceScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.EvictSpec, func() { s.EvictIdleCarts() }); err != nil {
		logger.Error("Failed to add cron job for idle cart eviction", err)
		return err
	}

	if s.purger != nil && s.cfg.BlobRetention > 0 {
		if _, err := s.cron.AddFunc(s.cfg.PurgeSpec, func() { s.PurgeStaleBlobs() }); err != nil {
			logger.Error("Failed to add cron job for stale cart purge", err)
			return err
		}
	}

	s.cron.Start()
	logger.Info("Cart maintenance scheduler started", map[string]interface{}{
		"evict_spec":     s.cfg.EvictSpec,
		"purge_spec":     s.cfg.PurgeSpec,
		"idle_timeout":   s.cfg.IdleTimeout.String(),
		"blob_retention": s.cfg.BlobRetention.String(),
		"purge_enabled":  s.purger != nil && s.cfg.BlobRetention > 0,
	})
	return nil
}

func (s *CartMaintenanceScheduler) Stop() {
	logger.Info("Stopping cart maintenance scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Cart maintenance scheduler stopped")
}

func (s *CartMaintenanceScheduler) EvictIdleCarts() int {
	n := s.evicter.EvictIdle(s.cfg.IdleTimeout)
	if s.recorder != nil {
		s.recorder.EnginesEvicted(n)
	}
	return n
}

func (s *CartMaintenanceScheduler) PurgeStaleBlobs() int64 {
	if s.purger == nil {
		return 0
	}
	cutoff := s.now().Add(-s.cfg.BlobRetention)
	n, err := s.purger.DeleteOlderThan(cutoff)
	if err != nil {
		logger.Error("Failed to purge stale carts from scheduler", err, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0
	}
	if s.recorder != nil {
		s.recorder.BlobsPurged(n)
	}
	return n
}
