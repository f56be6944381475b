package osudb

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/tops/internal/domain/model"
)

// Listing format versions that change the record layout.
const (
	// Records carry a leading byte size before this version.
	VersionNoEntrySize = 20191106
	// AR, CS, HP and OD are single bytes and star ratings are absent before this version.
	VersionFloatDifficulty = 20140609
	// Star ratings are stored as float32 from this version on.
	VersionFloatStarRating = 20250107
)

// Star rating list markers.
const (
	markerInt     = 0x08
	markerFloat32 = 0x0c
	markerFloat64 = 0x0d
)

const (
	timingPointSize = 8 + 8 + 1
	starRatingLists = 4
	ctxCheckEvery   = 1024
)

// BeatmapDB is a decoded osu!.db file.
type BeatmapDB struct {
	Version         int32
	FolderCount     int32
	AccountUnlocked bool
	UnlockDate      time.Time
	PlayerName      string
	Beatmaps        []model.BeatmapEntry
	Permissions     int32
}

// LoadBeatmapDB reads the listing database at path.
func LoadBeatmapDB(ctx context.Context, path string) (*BeatmapDB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	defer f.Close()

	db, err := ReadBeatmapDB(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return db, nil
}

// ReadBeatmapDB decodes a listing database from r.
func ReadBeatmapDB(ctx context.Context, r io.Reader) (*BeatmapDB, error) {
	d := newReader(r)
	db := &BeatmapDB{}

	var err error
	if db.Version, err = d.i32(); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	if db.FolderCount, err = d.i32(); err != nil {
		return nil, fmt.Errorf("folder count: %w", err)
	}
	if db.AccountUnlocked, err = d.boolean(); err != nil {
		return nil, fmt.Errorf("account unlocked: %w", err)
	}
	if db.UnlockDate, err = d.ticks(); err != nil {
		return nil, fmt.Errorf("unlock date: %w", err)
	}
	if db.PlayerName, err = d.str(); err != nil {
		return nil, fmt.Errorf("player name: %w", err)
	}
	n, err := d.count("beatmap")
	if err != nil {
		return nil, fmt.Errorf("beatmap count: %w", err)
	}

	db.Beatmaps = make([]model.BeatmapEntry, 0, min(n, 1<<16))
	for i := range n {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		entry, err := readBeatmap(d, db.Version)
		if err != nil {
			return nil, fmt.Errorf("beatmap %d: %w", i, err)
		}
		db.Beatmaps = append(db.Beatmaps, entry)
	}

	if db.Permissions, err = d.i32(); err != nil {
		return nil, fmt.Errorf("permissions: %w", err)
	}
	return db, nil
}

//nolint:funlen,gocyclo // mirrors the on-disk field order
func readBeatmap(d *reader, version int32) (model.BeatmapEntry, error) {
	var e model.BeatmapEntry

	if version < VersionNoEntrySize {
		if _, err := d.i32(); err != nil {
			return e, err
		}
	}

	var discard string
	strs := []*string{
		&e.Artist, &discard, // artist, artist unicode
		&e.Title, &discard, // title, title unicode
		&e.Creator, &e.DifficultyName,
		&discard, // audio file
		&e.Hash, &e.FileName,
	}
	for _, s := range strs {
		v, err := d.str()
		if err != nil {
			return e, err
		}
		*s = v
	}

	status, err := d.u8()
	if err != nil {
		return e, err
	}
	e.Status = model.RankedStatus(status)

	// hit object counts, last modification
	if err := d.skip(3*2 + 8); err != nil {
		return e, err
	}

	// AR, CS, HP, OD then slider velocity
	if version < VersionFloatDifficulty {
		err = d.skip(4 + 8)
	} else {
		err = d.skip(4*4 + 8)
	}
	if err != nil {
		return e, err
	}

	if version >= VersionFloatDifficulty {
		for range starRatingLists {
			if err := skipStarRatings(d); err != nil {
				return e, err
			}
		}
	}

	// drain, total and preview time
	if err := d.skip(3 * 4); err != nil {
		return e, err
	}

	points, err := d.count("timing point")
	if err != nil {
		return e, err
	}
	if err := d.skip(int64(points) * timingPointSize); err != nil {
		return e, err
	}

	beatmapID, err := d.i32()
	if err != nil {
		return e, err
	}
	setID, err := d.i32()
	if err != nil {
		return e, err
	}
	e.BeatmapID, e.BeatmapSetID = int(beatmapID), int(setID)

	// thread id, 4 grades, local offset, stack leniency
	if err := d.skip(4 + 4 + 2 + 4); err != nil {
		return e, err
	}

	mode, err := d.u8()
	if err != nil {
		return e, err
	}
	e.Mode = model.GameMode(mode)

	for range 2 { // source, tags
		if _, err := d.str(); err != nil {
			return e, err
		}
	}
	if err := d.skip(2); err != nil { // online offset
		return e, err
	}
	if _, err := d.str(); err != nil { // title font
		return e, err
	}
	// unplayed, last played, osz2
	if err := d.skip(1 + 8 + 1); err != nil {
		return e, err
	}
	if e.FolderName, err = d.str(); err != nil {
		return e, err
	}

	// last checked, five override flags
	tail := int64(8 + 5)
	if version < VersionFloatDifficulty {
		tail += 2
	}
	// last modification time, mania scroll speed
	tail += 4 + 1
	if err := d.skip(tail); err != nil {
		return e, err
	}
	return e, nil
}

func skipStarRatings(d *reader) error {
	n, err := d.count("star rating")
	if err != nil {
		return err
	}
	for range n {
		marker, err := d.u8()
		if err != nil {
			return err
		}
		if marker != markerInt {
			return fmt.Errorf("%w: star rating key marker 0x%02x at offset %d", ErrInvalidValue, marker, d.off-1)
		}
		if err := d.skip(4); err != nil {
			return err
		}
		if marker, err = d.u8(); err != nil {
			return err
		}
		switch marker {
		case markerFloat64:
			err = d.skip(8)
		case markerFloat32:
			err = d.skip(4)
		default:
			err = fmt.Errorf("%w: star rating value marker 0x%02x at offset %d", ErrInvalidValue, marker, d.off-1)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
