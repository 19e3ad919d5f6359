package cache

import "sync/atomic"

// CacheMetrics is a point-in-time view of the cache counters, handed out by
// Metrics and folded into the Stats map. HitRate is the percentage of reads
// served from cache.
type CacheMetrics struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Deletes int64   `json:"deletes"`
	Errors  int64   `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// counters is the live backing store. Fields are only touched atomically;
// callers wanting consistent numbers take a snapshot.
type counters struct {
	hits    int64
	misses  int64
	sets    int64
	deletes int64
	errors  int64
}

func (c *counters) hit()     { atomic.AddInt64(&c.hits, 1) }
func (c *counters) miss()    { atomic.AddInt64(&c.misses, 1) }
func (c *counters) set()     { atomic.AddInt64(&c.sets, 1) }
func (c *counters) deleted() { atomic.AddInt64(&c.deletes, 1) }
func (c *counters) failed()  { atomic.AddInt64(&c.errors, 1) }

func (c *counters) snapshot() CacheMetrics {
	m := CacheMetrics{
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
		Sets:    atomic.LoadInt64(&c.sets),
		Deletes: atomic.LoadInt64(&c.deletes),
		Errors:  atomic.LoadInt64(&c.errors),
	}
	if reads := m.Hits + m.Misses; reads > 0 {
		m.HitRate = float64(m.Hits) / float64(reads) * 100.0
	}
	return m
}
