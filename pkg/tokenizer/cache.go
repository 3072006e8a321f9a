package tokenizer

import (
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"
)

const (
	cacheCapacity      = 500             // Hard cap on cached results
	cacheKeepRecent    = 5               // Most recently used entries never evicted by age
	cacheMaxIdle       = 2 * time.Minute // Idle entries older than this are evicted
	cacheSweepInterval = 2 * time.Minute // Minimum delay between two age sweeps
)

type cacheKey [blake2b.Size]byte

func digest(text string) cacheKey {
	return blake2b.Sum512([]byte(text))
}

type cacheEntry struct {
	tokens     *Tokens
	lastAccess time.Time
}

// CacheStats reports the state of a Tokenizer result cache.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// resultCache memoizes tokenization results by content digest. It is not
// safe for concurrent use; the Tokenizer serializes access.
//
// In mass update mode new entries go to an unordered burst map and lookups
// don't touch the LRU order. Leaving the mode rebuilds the order once from
// the recorded access times.
type resultCache struct {
	entries    *lru.Cache[cacheKey, *cacheEntry]
	burst      map[cacheKey]*cacheEntry
	massUpdate bool
	lastSweep  time.Time
	now        func() time.Time
	hits       uint64
	misses     uint64
	log        *zerolog.Logger
}

func newResultCache(now func() time.Time, log *zerolog.Logger) *resultCache {
	entries, err := lru.New[cacheKey, *cacheEntry](cacheCapacity)
	if err != nil {
		// only fails on a non positive size
		panic(err)
	}
	return &resultCache{
		entries:   entries,
		burst:     make(map[cacheKey]*cacheEntry),
		lastSweep: now(),
		now:       now,
		log:       log,
	}
}

func (c *resultCache) get(key cacheKey) (*Tokens, bool) {
	var (
		entry *cacheEntry
		ok    bool
	)
	if entry, ok = c.burst[key]; !ok {
		if c.massUpdate {
			entry, ok = c.entries.Peek(key)
		} else {
			entry, ok = c.entries.Get(key)
		}
	}
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	entry.lastAccess = c.now()
	return entry.tokens, true
}

func (c *resultCache) lastAccess(key cacheKey) (time.Time, bool) {
	if entry, ok := c.burst[key]; ok {
		return entry.lastAccess, true
	}
	if entry, ok := c.entries.Peek(key); ok {
		return entry.lastAccess, true
	}
	return time.Time{}, false
}

func (c *resultCache) put(key cacheKey, tokens *Tokens) {
	entry := &cacheEntry{tokens: tokens, lastAccess: c.now()}
	if c.massUpdate {
		c.burst[key] = entry
		return
	}
	c.entries.Add(key, entry)
}

// sweep evicts entries idle for too long, keeping the most recent ones.
// It runs at most once per sweep interval unless forced.
func (c *resultCache) sweep(force bool) {
	if c.massUpdate {
		return
	}
	now := c.now()
	if !force && now.Sub(c.lastSweep) <= cacheSweepInterval {
		return
	}
	c.lastSweep = now

	keys := c.entries.Keys() // oldest first
	if len(keys) <= cacheKeepRecent {
		return
	}
	evicted := 0
	for _, key := range keys[:len(keys)-cacheKeepRecent] {
		if entry, ok := c.entries.Peek(key); ok && now.Sub(entry.lastAccess) > cacheMaxIdle {
			c.entries.Remove(key)
			evicted++
		}
	}
	if evicted > 0 {
		c.log.Debug().Int("evicted", evicted).Int("entries", c.entries.Len()).Msg("tokenizer cache swept")
	}
}

func (c *resultCache) clear() {
	c.entries.Purge()
	c.burst = make(map[cacheKey]*cacheEntry)
	c.lastSweep = c.now()
}

func (c *resultCache) setMassUpdate(enabled bool) {
	if enabled == c.massUpdate {
		return
	}
	c.massUpdate = enabled
	if enabled {
		return
	}

	type keyed struct {
		key   cacheKey
		entry *cacheEntry
	}
	all := make([]keyed, 0, c.entries.Len()+len(c.burst))
	for _, key := range c.entries.Keys() {
		if entry, ok := c.entries.Peek(key); ok {
			all = append(all, keyed{key, entry})
		}
	}
	for key, entry := range c.burst {
		all = append(all, keyed{key, entry})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].entry.lastAccess.Before(all[j].entry.lastAccess)
	})

	c.entries.Purge()
	c.burst = make(map[cacheKey]*cacheEntry)
	for _, item := range all {
		c.entries.Add(item.key, item.entry)
	}
	c.log.Debug().Int("entries", c.entries.Len()).Msg("tokenizer cache reordered after mass update")
	c.sweep(false)
}

func (c *resultCache) stats() CacheStats {
	return CacheStats{
		Entries: c.entries.Len() + len(c.burst),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}
