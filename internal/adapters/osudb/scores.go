package osudb

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/tops/internal/domain/model"
	"github.com/okian/tops/internal/domain/mods"
)

// VersionLongOnlineID is the first score version storing a 64-bit online id.
const VersionLongOnlineID = 20131110

// ScoreDB is a decoded scores.db file.
type ScoreDB struct {
	Version int32
	Groups  []model.ScoreGroup
}

// Len returns the number of scores across all groups.
func (db *ScoreDB) Len() int {
	n := 0
	for _, g := range db.Groups {
		n += len(g.Scores)
	}
	return n
}

// LoadScoreDB reads the score database at path.
func LoadScoreDB(ctx context.Context, path string) (*ScoreDB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	defer f.Close()

	db, err := ReadScoreDB(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return db, nil
}

// ReadScoreDB decodes a score database from r.
func ReadScoreDB(ctx context.Context, r io.Reader) (*ScoreDB, error) {
	d := newReader(r)
	db := &ScoreDB{}

	var err error
	if db.Version, err = d.i32(); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	n, err := d.count("beatmap")
	if err != nil {
		return nil, fmt.Errorf("beatmap count: %w", err)
	}

	db.Groups = make([]model.ScoreGroup, 0, min(n, 1<<16))
	for i := range n {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		g, err := readGroup(d)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		db.Groups = append(db.Groups, g)
	}
	return db, nil
}

func readGroup(d *reader) (model.ScoreGroup, error) {
	var g model.ScoreGroup
	var err error
	if g.BeatmapHash, err = d.str(); err != nil {
		return g, err
	}
	n, err := d.count("score")
	if err != nil {
		return g, err
	}
	g.Scores = make([]model.ScoreRecord, 0, min(n, 1<<10))
	for i := range n {
		s, err := readScore(d)
		if err != nil {
			return g, fmt.Errorf("score %d: %w", i, err)
		}
		g.Scores = append(g.Scores, s)
	}
	return g, nil
}

//nolint:funlen // mirrors the on-disk field order
func readScore(d *reader) (model.ScoreRecord, error) {
	var s model.ScoreRecord

	mode, err := d.u8()
	if err != nil {
		return s, err
	}
	s.Mode = model.GameMode(mode)

	version, err := d.i32()
	if err != nil {
		return s, err
	}
	if s.BeatmapHash, err = d.str(); err != nil {
		return s, err
	}
	if s.PlayerName, err = d.str(); err != nil {
		return s, err
	}
	if s.ReplayHash, err = d.str(); err != nil {
		return s, err
	}

	counts := []*int{
		&s.Judgements.N300, &s.Judgements.N100, &s.Judgements.N50,
		&s.Judgements.Geki, &s.Judgements.Katu, &s.Judgements.Misses,
	}
	for _, c := range counts {
		v, err := d.i16()
		if err != nil {
			return s, err
		}
		*c = int(uint16(v))
	}

	score, err := d.i32()
	if err != nil {
		return s, err
	}
	s.Score = int(score)

	combo, err := d.i16()
	if err != nil {
		return s, err
	}
	s.MaxCombo = int(uint16(combo))

	if s.FullCombo, err = d.boolean(); err != nil {
		return s, err
	}

	rawMods, err := d.i32()
	if err != nil {
		return s, err
	}
	s.Mods = mods.FromBits(uint32(rawMods))

	if _, err := d.str(); err != nil { // life bar graph, always empty
		return s, err
	}
	if s.PlayedAt, err = d.ticks(); err != nil {
		return s, err
	}
	if _, err := d.i32(); err != nil { // always -1
		return s, err
	}

	if version >= VersionLongOnlineID {
		s.OnlineID, err = d.i64()
	} else {
		var id int32
		id, err = d.i32()
		s.OnlineID = int64(id)
	}
	if err != nil {
		return s, err
	}

	if uint32(rawMods)&(1<<mods.Target) != 0 {
		// target practice accuracy
		if _, err := d.f64(); err != nil {
			return s, err
		}
	}
	return s, nil
}
