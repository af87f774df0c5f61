package plan

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/XenoAmess/jackrabbit/internal/qom"
)

// CachedPlan holds the bind-independent parts of a compiled query: the
// lowered base query and the compiled sort keys. Both are stateless and safe
// to share across concurrent executions; the constraint filter depends on
// bind values and is never cached.
type CachedPlan struct {
	Base     MultiColumnQuery
	SortKeys []SortKey
}

// PlanCache is a bounded cache of lowered plans keyed by the tree's source
// and ordering shape. Repeated executions of the same tree (the common case
// for prepared queries) skip source and ordering lowering.
//
// Eviction strategy: when the cache reaches its capacity the entire map is
// replaced. This is simpler than a true LRU and sufficient for a small number
// of distinct query shapes executed many times.
//
// Thread safety: all methods are safe for concurrent use.
type PlanCache struct {
	mu    sync.RWMutex
	items map[uint64]*CachedPlan
	max   int
}

// NewPlanCache creates a cache bounded to max entries. A max of zero disables
// caching.
func NewPlanCache(max int) *PlanCache {
	return &PlanCache{items: make(map[uint64]*CachedPlan, max), max: max}
}

// Get returns the cached plan for key, if present.
func (c *PlanCache) Get(key uint64) (*CachedPlan, bool) {
	if c == nil || c.max == 0 {
		return nil, false
	}
	c.mu.RLock()
	p, ok := c.items[key]
	c.mu.RUnlock()
	return p, ok
}

// Put stores a plan under key.
func (c *PlanCache) Put(key uint64, p *CachedPlan) {
	if c == nil || c.max == 0 {
		return
	}
	c.mu.Lock()
	if len(c.items) >= c.max {
		// Evict everything rather than tracking individual entry ages.
		c.items = make(map[uint64]*CachedPlan, c.max)
	}
	c.items[key] = p
	c.mu.Unlock()
}

// TreeKey hashes the bind-independent shape of the tree: the source subtree
// and the orderings. Trees with the same shape share a cache entry.
func TreeKey(t *qom.QueryTree) uint64 {
	d := xxhash.New()
	encodeSource(d, t.Source())
	for _, o := range t.Orderings() {
		fmt.Fprintf(d, "|o:%T:%v:%v", o.Operand, o.Operand, o.Descending)
	}
	return d.Sum64()
}

func encodeSource(d *xxhash.Digest, s qom.Source) {
	switch src := s.(type) {
	case *qom.Selector:
		fmt.Fprintf(d, "|sel:%s:%s", src.SelectorName, src.NodeType)
	case *qom.Join:
		fmt.Fprintf(d, "|join:%s:%T:%v(", src.JoinType, src.Condition, src.Condition)
		encodeSource(d, src.Left)
		encodeSource(d, src.Right)
		fmt.Fprint(d, ")")
	default:
		fmt.Fprintf(d, "|src:%T", s)
	}
}
