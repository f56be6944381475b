// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/tops/internal/domain/mods"
)

// GameMode identifies the ruleset a score or beatmap belongs to.
type GameMode uint8

// Game modes as encoded by the client databases.
const (
	ModeStandard GameMode = iota
	ModeTaiko
	ModeCatch
	ModeMania
)

func (m GameMode) String() string {
	switch m {
	case ModeStandard:
		return "osu"
	case ModeTaiko:
		return "taiko"
	case ModeCatch:
		return "fruits"
	case ModeMania:
		return "mania"
	}
	return "unknown"
}

// RankedStatus is the submission state of a beatmap.
type RankedStatus uint8

// Ranked statuses as stored in the listing database. 3 is unused by the client.
const (
	StatusUnknown     RankedStatus = 0
	StatusUnsubmitted RankedStatus = 1
	StatusPending     RankedStatus = 2 // pending, WIP and graveyard
	StatusRanked      RankedStatus = 4
	StatusApproved    RankedStatus = 5
	StatusQualified   RankedStatus = 6
	StatusLoved       RankedStatus = 7
)

func (s RankedStatus) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusUnsubmitted:
		return "unsubmitted"
	case StatusPending:
		return "pending"
	case StatusRanked:
		return "ranked"
	case StatusApproved:
		return "approved"
	case StatusQualified:
		return "qualified"
	case StatusLoved:
		return "loved"
	}
	return "unknown"
}

// Judgements holds hit result counts of one play.
type Judgements struct {
	Geki   int // perfect (300g)
	N300   int
	Katu   int
	N100   int
	N50    int
	Misses int
}

// Total returns the number of judged hit objects for osu!standard.
func (j Judgements) Total() int {
	return j.N300 + j.N100 + j.N50 + j.Misses
}

// ScoreRecord is one locally stored play. BeatmapHash is empty when the
// database did not record one.
type ScoreRecord struct {
	Mode        GameMode
	BeatmapHash string
	PlayerName  string
	ReplayHash  string
	Judgements  Judgements
	Score       int
	MaxCombo    int
	FullCombo   bool
	Mods        mods.Set
	PlayedAt    time.Time
	OnlineID    int64
}

// HasHash reports whether the record references a beatmap hash.
func (r ScoreRecord) HasHash() bool { return r.BeatmapHash != "" }

// ScoreGroup is the set of plays stored under one beatmap hash.
type ScoreGroup struct {
	BeatmapHash string
	Scores      []ScoreRecord
}

// BeatmapEntry is one beatmap from the listing database. Empty optional
// strings mean the field was absent.
type BeatmapEntry struct {
	Hash           string
	Status         RankedStatus
	Mode           GameMode
	FolderName     string
	FileName       string
	Artist         string
	Title          string
	DifficultyName string
	Creator        string
	BeatmapID      int
	BeatmapSetID   int
}

// PerformanceResult is the evaluator output for one (beatmap, score) pair.
type PerformanceResult struct {
	PP    float64
	Stars float64
}

// ScoredEntry joins a score with its beatmap and computed performance.
type ScoredEntry struct {
	Score       ScoreRecord
	Beatmap     BeatmapEntry
	Performance PerformanceResult
}

// RankedReport is the ordered outcome of a run.
type RankedReport struct {
	// Top holds at most the configured number of entries, best first.
	Top []ScoredEntry
	// UniqueEntries is the number of entries ranked, before truncation.
	UniqueEntries int

	WeightedTotal  float64
	BonusTotal     float64
	GrandTotal     float64
	FullComboCount int
}
