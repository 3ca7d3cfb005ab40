// Package cache holds the per-run memoization used by the processing
// pipeline.
package cache

import (
	"context"
	"sync"

	"github.com/thechosenone98/MP3Journaling/core/audio"
	"github.com/thechosenone98/MP3Journaling/logger"
)

// DurationCache memoizes audio duration probes. Alignment and merge both
// need every segment's duration, and a probe is an external-tool
// invocation, so each file pays for it at most once per run.
type DurationCache struct {
	svc audio.DurationService

	mu    sync.RWMutex
	known map[string]float64
}

// NewDurationCache wraps a duration service with per-path memoization.
func NewDurationCache(svc audio.DurationService) *DurationCache {
	return &DurationCache{
		svc:   svc,
		known: make(map[string]float64),
	}
}

// Get returns the duration in seconds of the audio file at path, probing
// the underlying service on first use. Failed probes are not cached, so a
// rerun against a repaired file probes again.
func (c *DurationCache) Get(ctx context.Context, path string) (float64, error) {
	c.mu.RLock()
	d, ok := c.known[path]
	c.mu.RUnlock()
	if ok {
		return d, nil
	}

	d, err := c.svc.Duration(ctx, path)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.known[path] = d
	c.mu.Unlock()

	logger.Debug("Probed audio duration",
		logger.String("path", path),
		logger.Float64("seconds", d))

	return d, nil
}

// Len reports how many distinct files have been probed so far.
func (c *DurationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.known)
}
