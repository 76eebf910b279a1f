// Package highlightcache implements HighlightCache: a
// byte-range → highlight-span cache tagged with the (doc_version,
// syntax_version) pair it was computed at, LRU-bounded by both entry count
// and total byte coverage.
//
// Built on github.com/hashicorp/golang-lru/v2 rather than a hand-rolled ring
// buffer, since golang-lru directly expresses a count-bounded eviction
// policy; a byte-budget trim runs alongside it for the total-coverage bound.
package highlightcache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Highlight is an opaque style identifier (a theme scope id, capture name,
// or resolved style index — the render layer decides). HighlightCache only
// needs it to be comparable for test assertions.
type Highlight string

// Span pairs a Highlight with the byte range it covers.
type Span struct {
	Highlight Highlight
	Start     uint32
	End       uint32
}

// ByteRange is a half-open [Start, End) byte interval.
type ByteRange struct {
	Start, End uint32
}

// Len returns End-Start, clamped to zero.
func (r ByteRange) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return int(r.End - r.Start)
}

// Overlaps reports whether r and o share any byte.
func (r ByteRange) Overlaps(o ByteRange) bool {
	return r.Start < o.End && o.Start < r.End
}

// Intersect returns the overlapping sub-range of r and o, and whether one
// exists.
func (r ByteRange) Intersect(o ByteRange) (ByteRange, bool) {
	start := r.Start
	if o.Start > start {
		start = o.Start
	}
	end := r.End
	if o.End < end {
		end = o.End
	}
	if start >= end {
		return ByteRange{}, false
	}
	return ByteRange{Start: start, End: end}, true
}

type entry struct {
	rng        ByteRange
	spans      []Span
	docVersion uint64
	synVersion uint64
}

// defaultMaxEntries and defaultMaxBytes bound the cache two ways at once:
// entry count via golang-lru's fixed-capacity eviction, and total byte
// coverage so a handful of huge ranges cannot dominate memory even while
// under the entry-count cap.
const (
	defaultMaxEntries = 512
	defaultMaxBytes   = 4 << 20 // 4 MiB of cached span coverage
)

// Cache is the byte-range highlight cache.
type Cache struct {
	lru        *lru.Cache[int, *entry]
	nextID     int
	totalBytes int
	maxBytes   int
	parseHint  parseHighlightState
}

// parseHighlightState implements the "refuse refresh while an interpolation
// has run without a completed parse beyond tolerance" rule: tracks how many interpolations have happened
// since the last completed parse, and the tolerance before stale entries
// are allowed to be overwritten with highlights computed against a merely
// interpolated tree.
type parseHighlightState struct {
	interpolationsSinceParse int
	tolerance                int
}

// New builds an empty cache with the default entry/byte budget.
func New() *Cache {
	return NewWithLimits(defaultMaxEntries, defaultMaxBytes)
}

// NewWithLimits builds an empty cache bounded by maxEntries and maxBytes.
func NewWithLimits(maxEntries, maxBytes int) *Cache {
	c := &Cache{maxBytes: maxBytes, parseHint: parseHighlightState{tolerance: 1}}
	l, _ := lru.NewWithEvict[int, *entry](maxEntries, func(_ int, e *entry) {
		c.totalBytes -= e.rng.Len()
	})
	c.lru = l
	return c
}

// SetTolerance configures how many interpolations (without an intervening
// completed parse) the cache accepts before it starts refusing to refresh
// entries with interpolation-only highlight data.
func (c *Cache) SetTolerance(n int) { c.parseHint.tolerance = n }

// NoteInterpolation records that an edit was interpolated but not yet
// reparsed; callers invoke this once per Syntax.Interpolate call.
func (c *Cache) NoteInterpolation() { c.parseHint.interpolationsSinceParse++ }

// NoteParseCompleted resets the interpolation counter; callers invoke this
// once a background or inline reparse has been applied.
func (c *Cache) NoteParseCompleted() { c.parseHint.interpolationsSinceParse = 0 }

// withinTolerance reports whether a fresh update is still allowed given how
// many un-reparsed interpolations have elapsed.
func (c *Cache) withinTolerance() bool {
	return c.parseHint.interpolationsSinceParse <= c.parseHint.tolerance
}

// Get serves cached highlights intersecting want at the given version pair.
// Entries from a different version are treated as absent.
func (c *Cache) Get(want ByteRange, docVersion, synVersion uint64) []Span {
	var out []Span
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if !ok || !e.rng.Overlaps(want) {
			continue
		}
		if e.docVersion != docVersion || e.synVersion != synVersion {
			continue
		}
		overlap, ok := e.rng.Intersect(want)
		if !ok {
			continue
		}
		for _, sp := range e.spans {
			spRange := ByteRange{Start: sp.Start, End: sp.End}
			if clipped, ok := spRange.Intersect(overlap); ok {
				out = append(out, Span{Highlight: sp.Highlight, Start: clipped.Start, End: clipped.End})
			}
		}
		c.lru.Get(key) // touch for recency
	}
	return out
}

// Update replaces any entries intersecting rng and inserts a fresh one
// carrying spans computed at (docVersion, synVersion).
// If the cache is mid-interpolation beyond tolerance and the caller is
// trying to insert an interpolation-only (unparsed) result, the update is
// refused and the stale entries are kept — signalled by unparsed=true.
func (c *Cache) Update(rng ByteRange, spans []Span, docVersion, synVersion uint64, unparsed bool) {
	if unparsed && !c.withinTolerance() {
		return
	}
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if ok && e.rng.Overlaps(rng) {
			c.lru.Remove(key)
		}
	}
	id := c.nextID
	c.nextID++
	c.lru.Add(id, &entry{rng: rng, spans: append([]Span(nil), spans...), docVersion: docVersion, synVersion: synVersion})
	c.totalBytes += rng.Len()
	for c.totalBytes > c.maxBytes && c.lru.Len() > 0 {
		if _, _, ok := c.lru.RemoveOldest(); !ok {
			break
		}
	}
}

// Clear empties the cache — called on language change.
func (c *Cache) Clear() {
	c.lru.Purge()
	c.totalBytes = 0
	c.parseHint.interpolationsSinceParse = 0
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int { return c.lru.Len() }

// ByteCoverage returns the sum of cached entries' byte-range lengths.
func (c *Cache) ByteCoverage() int { return c.totalBytes }
