// Package library holds the immutable lookup tables built from the two
// source databases. Tables are constructed once and only expose read access.
package library

import (
	"iter"
	"slices"

	"github.com/okian/tops/internal/domain/model"
)

// Listing is a read-only view of the beatmap listing.
type Listing struct {
	entries []model.BeatmapEntry
	byHash  map[string]int
	shadow  int
}

// NewListing copies entries into a new Listing. When several entries share a
// hash the first one in listing order is the one Lookup returns.
func NewListing(entries []model.BeatmapEntry) *Listing {
	l := &Listing{
		entries: slices.Clone(entries),
		byHash:  make(map[string]int, len(entries)),
	}
	for i, e := range l.entries {
		if _, ok := l.byHash[e.Hash]; ok {
			l.shadow++
			continue
		}
		l.byHash[e.Hash] = i
	}
	return l
}

// Lookup returns the first beatmap whose hash equals hash.
func (l *Listing) Lookup(hash string) (model.BeatmapEntry, bool) {
	i, ok := l.byHash[hash]
	if !ok {
		return model.BeatmapEntry{}, false
	}
	return l.entries[i], true
}

// Len returns the number of beatmaps in the listing, shadowed ones included.
func (l *Listing) Len() int { return len(l.entries) }

// Shadowed returns how many entries are unreachable through Lookup because an
// earlier entry has the same hash.
func (l *Listing) Shadowed() int { return l.shadow }

// Position locates a record inside a ScoreTable.
type Position struct {
	Group     int
	Groups    int
	Index     int
	GroupSize int
}

// ScoreTable is a read-only view of the score history grouped by beatmap.
type ScoreTable struct {
	groups []model.ScoreGroup
	total  int
}

// NewScoreTable deep-copies groups into a new ScoreTable.
func NewScoreTable(groups []model.ScoreGroup) *ScoreTable {
	t := &ScoreTable{groups: make([]model.ScoreGroup, len(groups))}
	for i, g := range groups {
		t.groups[i] = model.ScoreGroup{
			BeatmapHash: g.BeatmapHash,
			Scores:      slices.Clone(g.Scores),
		}
		t.total += len(g.Scores)
	}
	return t
}

// Groups returns the number of beatmap groups.
func (t *ScoreTable) Groups() int { return len(t.groups) }

// Len returns the number of score records across all groups.
func (t *ScoreTable) Len() int { return t.total }

// All yields every record in group order, then record order.
func (t *ScoreTable) All() iter.Seq2[Position, model.ScoreRecord] {
	return func(yield func(Position, model.ScoreRecord) bool) {
		for gi, g := range t.groups {
			for ri, rec := range g.Scores {
				pos := Position{Group: gi, Groups: len(t.groups), Index: ri, GroupSize: len(g.Scores)}
				if !yield(pos, rec) {
					return
				}
			}
		}
	}
}
