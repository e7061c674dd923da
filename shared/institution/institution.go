// Package institution caches the allow-list of institutional email domains.
package institution

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/openreview/openreview-web/shared/logger"
)

type Source interface {
	InstitutionDomains(ctx context.Context) ([]string, error)
}

// Cache holds the last list fetched from Source. Concurrent refreshes share one request.
type Cache struct {
	source Source
	group  singleflight.Group

	mu      sync.RWMutex
	domains []string
	updated time.Time
}

func New(source Source) *Cache {
	return &Cache{source: source}
}

// Update fetches the list. On error the previous list is kept.
func (c *Cache) Update(ctx context.Context) error {
	_, err, _ := c.group.Do("domains", func() (any, error) {
		domains, err := c.source.InstitutionDomains(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		// Replace the whole list to drop removed domains
		c.domains = domains
		c.updated = time.Now()
		return nil, nil
	})
	return err
}

// Domains returns a copy of the cached list, nil before the first successful update.
func (c *Cache) Domains() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.domains)
}

// Ensure fetches the list if it was never loaded and returns what is cached afterwards.
func (c *Cache) Ensure(ctx context.Context) []string {
	if c.UpdatedAt().IsZero() {
		if err := c.Update(ctx); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to load institution domains")
		}
	}
	return c.Domains()
}

func (c *Cache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}

// StartBackgroundUpdate loads the list now and then every interval until ctx is done.
func (c *Cache) StartBackgroundUpdate(ctx context.Context, interval time.Duration) {
	if err := c.Update(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("initial institution domains update failed")
	}

	ticker := time.NewTicker(interval)
	logger.Log.Info().Dur("interval", interval).Msg("started institution domains background update")
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Update(ctx); err != nil {
					logger.Log.Warn().Err(err).Msg("error updating institution domains")
				}
			}
		}
	}()
}
