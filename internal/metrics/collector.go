package metrics

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"
)

// StorageStats contains storage counters for metrics
type StorageStats struct {
	Templates int
	Snapshots int
}

// StatsProvider provides storage statistics for metrics
type StatsProvider interface {
	StorageStats(ctx context.Context) (StorageStats, error)
}

// Collector keeps the system and storage gauges current. Counters update at
// the call sites; the gauges here are cheap to recompute so they refresh on
// an interval instead.
type Collector struct {
	metrics     *Metrics
	stats       StatsProvider
	storagePath string
	interval    time.Duration
	startTime   time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCollector creates a new gauge collector. stats may be nil when no store
// is attached.
func NewCollector(m *Metrics, stats StatsProvider, storagePath string, interval time.Duration) *Collector {
	if interval == 0 {
		interval = 10 * time.Second
	}
	return &Collector{
		metrics:     m,
		stats:       stats,
		storagePath: storagePath,
		interval:    interval,
		startTime:   time.Now(),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the collector background loop
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		c.update(ctx)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.update(ctx)
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the collector loop
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// update refreshes all gauges once
func (c *Collector) update(ctx context.Context) {
	c.metrics.UptimeSeconds.Set(time.Since(c.startTime).Seconds())
	c.metrics.Goroutines.Set(float64(runtime.NumGoroutine()))

	if c.storagePath != "" {
		if info, err := os.Stat(c.storagePath); err == nil {
			c.metrics.StorageUsedBytes.Set(float64(info.Size()))
		}
	}

	if c.stats != nil {
		if stats, err := c.stats.StorageStats(ctx); err == nil {
			c.metrics.TemplatesStored.Set(float64(stats.Templates))
			c.metrics.TemplateSnapshots.Set(float64(stats.Snapshots))
		}
	}
}
