// Package cache provides a timing-only data cache model built on Akita
// cache components.
//
// The model tracks tags and replacement state but stores no data: it
// exists to produce hit/miss latencies and to carry warm state across
// statistics resets, which is what the warm-up phase of sampled
// simulation is for.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache geometry and latency parameters.
type Config struct {
	// Size in bytes.
	Size int
	// Associativity is the number of ways.
	Associativity int
	// BlockSize in bytes.
	BlockSize int
	// HitLatency in cycles.
	HitLatency uint64
	// MissLatency in cycles, including the memory access.
	MissLatency uint64
}

// DefaultL1DConfig returns the default L1 data cache configuration: 64KB,
// 8-way, 64B lines.
func DefaultL1DConfig() Config {
	return Config{
		Size:          64 * 1024,
		Associativity: 8,
		BlockSize:     64,
		HitLatency:    4,
		MissLatency:   120,
	}
}

// Stats holds cache access statistics.
type Stats struct {
	Reads     uint64
	Writes    uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a set-associative timing cache.
type Cache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	stats     Stats
}

// New creates a Cache with the given configuration.
func New(config Config) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns the access statistics.
func (c *Cache) Stats() Stats {
	return c.stats
}

// ResetStats clears the access statistics. Cache contents are untouched,
// so warm state survives a statistics reset.
func (c *Cache) ResetStats() {
	c.stats = Stats{}
}

// Access performs one load or store and returns whether it hit and the
// access latency in cycles.
func (c *Cache) Access(addr uint64, write bool) (hit bool, cycles uint64) {
	if write {
		c.stats.Writes++
	} else {
		c.stats.Reads++
	}

	blockAddr := addr / uint64(c.config.BlockSize) * uint64(c.config.BlockSize)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		if write {
			block.IsDirty = true
		}

		return true, c.config.HitLatency
	}

	c.stats.Misses++

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return false, c.config.MissLatency
	}

	if victim.IsValid {
		c.stats.Evictions++
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = write
	c.directory.Visit(victim)

	return false, c.config.MissLatency
}
