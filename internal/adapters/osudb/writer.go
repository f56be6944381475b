package osudb

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/okian/tops/internal/domain/model"
	"github.com/okian/tops/internal/domain/mods"
)

// writer encodes little-endian primitives. The first error sticks and
// later writes are no-ops.
type writer struct {
	w   *bufio.Writer
	err error
	buf [binary.MaxVarintLen64]byte
}

func newWriter(w io.Writer) *writer {
	return &writer{w: bufio.NewWriter(w)}
}

func (e *writer) bytes(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

func (e *writer) u8(v byte)   { e.bytes([]byte{v}) }
func (e *writer) i16(v int16) { e.bytes(binary.LittleEndian.AppendUint16(nil, uint16(v))) }
func (e *writer) i32(v int32) { e.bytes(binary.LittleEndian.AppendUint32(nil, uint32(v))) }
func (e *writer) i64(v int64) { e.bytes(binary.LittleEndian.AppendUint64(nil, uint64(v))) }
func (e *writer) f32(v float32) {
	e.bytes(binary.LittleEndian.AppendUint32(nil, math.Float32bits(v)))
}
func (e *writer) f64(v float64) {
	e.bytes(binary.LittleEndian.AppendUint64(nil, math.Float64bits(v)))
}
func (e *writer) ticks(t time.Time) { e.i64(timeToTicks(t)) }

func (e *writer) boolean(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

// str writes s as a present string. Empty strings are written absent, which
// is what the client does for optional fields.
func (e *writer) str(s string) {
	if s == "" {
		e.u8(stringAbsent)
		return
	}
	e.u8(stringPresent)
	n := binary.PutUvarint(e.buf[:], uint64(len(s)))
	e.bytes(e.buf[:n])
	e.bytes([]byte(s))
}

func (e *writer) flush() error {
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

// WriteBeatmapDB encodes db in the layout its Version selects. Fields the
// model does not carry are written as zero values.
func WriteBeatmapDB(w io.Writer, db *BeatmapDB) error {
	e := newWriter(w)
	e.i32(db.Version)
	e.i32(db.FolderCount)
	e.boolean(db.AccountUnlocked)
	e.ticks(db.UnlockDate)
	e.str(db.PlayerName)
	e.i32(int32(len(db.Beatmaps)))
	for _, b := range db.Beatmaps {
		writeBeatmap(e, db.Version, b)
	}
	e.i32(db.Permissions)
	if err := e.flush(); err != nil {
		return fmt.Errorf("write beatmap db: %w", err)
	}
	return nil
}

func writeBeatmap(e *writer, version int32, b model.BeatmapEntry) {
	if version < VersionNoEntrySize {
		e.i32(0) // size is ignored when reading
	}
	e.str(b.Artist)
	e.str("")
	e.str(b.Title)
	e.str("")
	e.str(b.Creator)
	e.str(b.DifficultyName)
	e.str("audio.mp3")
	e.str(b.Hash)
	e.str(b.FileName)
	e.u8(byte(b.Status))
	e.i16(0)
	e.i16(0)
	e.i16(0)
	e.i64(0)

	if version < VersionFloatDifficulty {
		e.bytes([]byte{5, 5, 5, 5})
	} else {
		for range 4 {
			e.f32(5)
		}
	}
	e.f64(1.4)

	if version >= VersionFloatDifficulty {
		for range starRatingLists {
			e.i32(1)
			e.u8(markerInt)
			e.i32(0)
			if version >= VersionFloatStarRating {
				e.u8(markerFloat32)
				e.f32(0)
			} else {
				e.u8(markerFloat64)
				e.f64(0)
			}
		}
	}

	e.i32(0)
	e.i32(0)
	e.i32(0)

	e.i32(1)
	e.f64(500)
	e.f64(0)
	e.boolean(true)

	e.i32(int32(b.BeatmapID))
	e.i32(int32(b.BeatmapSetID))
	e.i32(0)
	e.bytes([]byte{9, 9, 9, 9})
	e.i16(0)
	e.f32(0.7)
	e.u8(byte(b.Mode))
	e.str("")
	e.str("")
	e.i16(0)
	e.str("")
	e.boolean(true)
	e.i64(0)
	e.boolean(false)
	e.str(b.FolderName)
	e.i64(0)
	for range 5 {
		e.boolean(false)
	}
	if version < VersionFloatDifficulty {
		e.i16(0)
	}
	e.i32(0)
	e.u8(0)
}

// WriteScoreDB encodes db with every score at db.Version.
func WriteScoreDB(w io.Writer, db *ScoreDB) error {
	e := newWriter(w)
	e.i32(db.Version)
	e.i32(int32(len(db.Groups)))
	for _, g := range db.Groups {
		e.str(g.BeatmapHash)
		e.i32(int32(len(g.Scores)))
		for _, s := range g.Scores {
			writeScore(e, db.Version, s)
		}
	}
	if err := e.flush(); err != nil {
		return fmt.Errorf("write score db: %w", err)
	}
	return nil
}

func writeScore(e *writer, version int32, s model.ScoreRecord) {
	e.u8(byte(s.Mode))
	e.i32(version)
	e.str(s.BeatmapHash)
	e.str(s.PlayerName)
	e.str(s.ReplayHash)
	j := s.Judgements
	for _, c := range []int{j.N300, j.N100, j.N50, j.Geki, j.Katu, j.Misses} {
		e.i16(int16(uint16(c)))
	}
	e.i32(int32(s.Score))
	e.i16(int16(uint16(s.MaxCombo)))
	e.boolean(s.FullCombo)
	e.i32(int32(s.Mods.Bits()))
	e.str("")
	e.ticks(s.PlayedAt)
	e.i32(-1)
	if version >= VersionLongOnlineID {
		e.i64(s.OnlineID)
	} else {
		e.i32(int32(s.OnlineID))
	}
	if s.Mods.Has(mods.Target) {
		e.f64(0)
	}
}
