package metrics

import (
	"time"

	"media-resolver/internal/logging"
	"media-resolver/internal/resolver"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	Stats() resolver.Stats
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.Stats()

	RegisteredAgents.Set(float64(stats.Agents))
	RoutedSuffixes.WithLabelValues("unpack").Set(float64(stats.UnpackRoutes))
	RoutedSuffixes.WithLabelValues("tagparser").Set(float64(stats.TagParserRoutes))
	if stats.HasWildcard {
		WildcardParserRegistered.Set(1)
	} else {
		WildcardParserRegistered.Set(0)
	}

	logging.Debug("Metrics collected: agents=%d, unpack routes=%d, tag parser routes=%d",
		stats.Agents, stats.UnpackRoutes, stats.TagParserRoutes)
}
