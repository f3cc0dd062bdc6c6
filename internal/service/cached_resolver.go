package service

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/genopilot-report-server/internal/domain"
)

// CacheStats tracks cache performance for the cached resolver.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// CachedResolver fronts the lookup engine with an in-memory LRU cache.
// Lookups are already cheap map hits, but the cache also absorbs the
// recommendation cleanup work and gives the API a hit-rate signal.
type CachedResolver struct {
	resolver *Resolver
	cache    *lru.Cache
	logger   *logrus.Logger

	statsMu sync.Mutex
	stats   CacheStats
}

// NewCachedResolver creates a cached resolver with the given LRU capacity.
func NewCachedResolver(logger *logrus.Logger, resolver *Resolver, size int) (*CachedResolver, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachedResolver{
		resolver: resolver,
		cache:    cache,
		logger:   logger,
	}, nil
}

// Resolve resolves a marker input, serving repeated lookups from the cache.
// Only successful resolutions are cached; error outcomes are recomputed so
// that corrected table data after a restart is never masked.
func (c *CachedResolver) Resolve(gene domain.Gene, rawInput string) (domain.MarkerResult, error) {
	key, err := domain.NormalizeDiplotype(rawInput)
	if err != nil {
		// Malformed input never reaches the cache.
		return c.resolver.Resolve(gene, rawInput)
	}
	cacheKey := string(gene) + "|" + key

	if v, ok := c.cache.Get(cacheKey); ok {
		c.recordHit(true)
		return v.(domain.MarkerResult), nil
	}
	c.recordHit(false)

	result, err := c.resolver.Resolve(gene, rawInput)
	if err != nil {
		return domain.MarkerResult{}, err
	}
	c.cache.Add(cacheKey, result)
	return result, nil
}

// DiplotypeFromMarkers delegates to the underlying resolver; marker-mode
// conversion is not cached.
func (c *CachedResolver) DiplotypeFromMarkers(gene domain.Gene, values map[string]string) (string, []string, error) {
	return c.resolver.DiplotypeFromMarkers(gene, values)
}

// Stats returns a snapshot of cache performance counters.
func (c *CachedResolver) Stats() CacheStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

func (c *CachedResolver) recordHit(hit bool) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if hit {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
}
