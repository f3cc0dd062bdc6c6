package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genopilot-report-server/internal/domain"
)

func newTestCachedResolver(t *testing.T) *CachedResolver {
	t.Helper()
	cached, err := NewCachedResolver(testLogger(), newTestResolver(t), 64)
	require.NoError(t, err)
	return cached
}

func TestCachedResolverHitsAndMisses(t *testing.T) {
	resolver := newTestCachedResolver(t)

	first, err := resolver.Resolve(domain.GeneDPYD, "*1/*2A")
	require.NoError(t, err)

	second, err := resolver.Resolve(domain.GeneDPYD, "*1/*2A")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stats := resolver.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestCachedResolverNormalizesCacheKey(t *testing.T) {
	resolver := newTestCachedResolver(t)

	_, err := resolver.Resolve(domain.GeneCYP2D6, "*4/*10")
	require.NoError(t, err)

	// Same diplotype written in the opposite allele order hits the cache.
	_, err = resolver.Resolve(domain.GeneCYP2D6, "*10/*4")
	require.NoError(t, err)

	stats := resolver.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestCachedResolverGeneScopesKey(t *testing.T) {
	resolver := newTestCachedResolver(t)

	dpyd, err := resolver.Resolve(domain.GeneDPYD, "*1/*1")
	require.NoError(t, err)

	cyp, err := resolver.Resolve(domain.GeneCYP2D6, "*1/*1")
	require.NoError(t, err)

	assert.NotEqual(t, dpyd.Recommendation, cyp.Recommendation)
	stats := resolver.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
}

func TestCachedResolverErrorsBypassCache(t *testing.T) {
	resolver := newTestCachedResolver(t)

	_, err := resolver.Resolve(domain.GeneUGT1A1, "not a diplotype")
	require.Error(t, err)

	_, err = resolver.Resolve(domain.GeneUGT1A1, "not a diplotype")
	require.Error(t, err)

	// Malformed inputs never touch the cache counters.
	stats := resolver.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)

	// Unknown but well-formed combinations count misses yet are not stored.
	_, err = resolver.Resolve(domain.GeneCYP2D6, "*1/*99")
	require.Error(t, err)
	_, err = resolver.Resolve(domain.GeneCYP2D6, "*1/*99")
	require.Error(t, err)

	stats = resolver.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
}
