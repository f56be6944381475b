// Package dedupe keeps the best scored entry per beatmap.
package dedupe

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/okian/tops/internal/domain/model"
)

// SentinelKey groups entries whose score carries no beatmap hash. All of
// them compete for a single slot.
const SentinelKey = "unknown"

// Deduper retains the highest performing entry per beatmap hash.
type Deduper interface {
	// Offer considers entry for its beatmap slot. It returns true when entry
	// is now the kept one. A later entry replaces the kept one only when its
	// performance value is strictly greater, so the first of equal entries
	// wins.
	Offer(ctx context.Context, entry model.ScoredEntry) bool

	// Best returns a copy of the kept entries keyed by hash (or sentinel).
	Best() map[string]model.ScoredEntry

	// Entries returns the kept entries in no particular order.
	Entries() []model.ScoredEntry

	// Size returns the number of slots.
	Size() int64

	// Collapsed returns how many offered entries were not kept.
	Collapsed() int64
}

// inMemoryDeduper implements Deduper with a map guarded by a mutex.
type inMemoryDeduper struct {
	mu       sync.RWMutex
	best     map[string]model.ScoredEntry
	sentinel string
	capacity int
	offered  atomic.Int64
	size     atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		sentinel: SentinelKey,
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	d.best = make(map[string]model.ScoredEntry, d.capacity)
	return d
}

// Collapse runs entries through a new deduper and returns the kept ones keyed
// by hash.
func Collapse(ctx context.Context, entries []model.ScoredEntry, opts ...Option) map[string]model.ScoredEntry {
	d := NewInMemoryDeduper(append([]Option{WithCapacity(len(entries))}, opts...)...)
	for _, e := range entries {
		d.Offer(ctx, e)
	}
	return d.Best()
}

func (d *inMemoryDeduper) key(e model.ScoredEntry) string {
	if !e.Score.HasHash() {
		return d.sentinel
	}
	return e.Score.BeatmapHash
}

func (d *inMemoryDeduper) Offer(_ context.Context, entry model.ScoredEntry) bool {
	d.offered.Add(1)
	key := d.key(entry)

	d.mu.Lock()
	defer d.mu.Unlock()

	kept, exists := d.best[key]
	if !exists {
		d.best[key] = entry
		d.size.Add(1)
		return true
	}
	if entry.Performance.PP > kept.Performance.PP {
		d.best[key] = entry
		return true
	}
	return false
}

func (d *inMemoryDeduper) Best() map[string]model.ScoredEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return maps.Clone(d.best)
}

func (d *inMemoryDeduper) Entries() []model.ScoredEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]model.ScoredEntry, 0, len(d.best))
	for _, v := range d.best {
		out = append(out, v)
	}
	return out
}

// Size returns the current number of slots in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

func (d *inMemoryDeduper) Collapsed() int64 {
	return d.offered.Load() - d.size.Load()
}
