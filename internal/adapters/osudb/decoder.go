// Package osudb reads and writes the client's binary databases: the beatmap
// listing (osu!.db) and the local score store (scores.db).
package osudb

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// String markers.
const (
	stringAbsent  = 0x00
	stringPresent = 0x0b
)

// maxStringLength guards against reading garbage lengths into memory.
const maxStringLength = 1 << 24

// ticksAtUnixEpoch is 1970-01-01 in .NET ticks (100ns since year 1).
const ticksAtUnixEpoch = 621355968000000000

// reader decodes little-endian primitives and tracks the offset for errors.
type reader struct {
	r   *bufio.Reader
	off int64
	buf [8]byte
}

func newReader(r io.Reader) *reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &reader{r: br}
	}
	return &reader{r: bufio.NewReaderSize(r, 64*1024)}
}

func (d *reader) fill(n int) ([]byte, error) {
	b := d.buf[:n]
	read, err := io.ReadFull(d.r, b)
	d.off += int64(read)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w at offset %d", ErrTruncated, d.off)
		}
		return nil, fmt.Errorf("read at offset %d: %w", d.off, err)
	}
	return b, nil
}

func (d *reader) u8() (byte, error) {
	b, err := d.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *reader) boolean() (bool, error) {
	b, err := d.u8()
	return b != 0, err
}

func (d *reader) i16() (int16, error) {
	b, err := d.fill(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

func (d *reader) i32() (int32, error) {
	b, err := d.fill(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (d *reader) i64() (int64, error) {
	b, err := d.fill(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (d *reader) f32() (float32, error) {
	b, err := d.fill(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (d *reader) f64() (float64, error) {
	b, err := d.fill(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func (d *reader) uleb128() (uint64, error) {
	var v uint64
	for shift := uint(0); shift < 64; shift += 7 {
		b, err := d.u8()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: uleb128 overflow at offset %d", ErrInvalidValue, d.off)
}

// str reads an optional string. Absent strings decode as "".
func (d *reader) str() (string, error) {
	marker, err := d.u8()
	if err != nil {
		return "", err
	}
	switch marker {
	case stringAbsent:
		return "", nil
	case stringPresent:
	default:
		return "", fmt.Errorf("%w 0x%02x at offset %d", ErrInvalidString, marker, d.off-1)
	}

	n, err := d.uleb128()
	if err != nil {
		return "", err
	}
	if n > maxStringLength {
		return "", fmt.Errorf("%w: string length %d at offset %d", ErrInvalidValue, n, d.off)
	}
	b := make([]byte, n)
	read, err := io.ReadFull(d.r, b)
	d.off += int64(read)
	if err != nil {
		return "", fmt.Errorf("%w at offset %d", ErrTruncated, d.off)
	}
	return string(b), nil
}

func (d *reader) skip(n int64) error {
	skipped, err := d.r.Discard(int(n))
	d.off += int64(skipped)
	if err != nil {
		return fmt.Errorf("%w at offset %d", ErrTruncated, d.off)
	}
	return nil
}

// ticks reads a .NET DateTime tick count. Zero maps to the zero time.
func (d *reader) ticks() (time.Time, error) {
	v, err := d.i64()
	if err != nil || v == 0 {
		return time.Time{}, err
	}
	return ticksToTime(v), nil
}

func ticksToTime(ticks int64) time.Time {
	return time.Unix(0, (ticks-ticksAtUnixEpoch)*100).UTC()
}

func timeToTicks(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()/100 + ticksAtUnixEpoch
}

// count reads a non-negative int32 element count.
func (d *reader) count(what string) (int, error) {
	n, err := d.i32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative %s count %d at offset %d", ErrInvalidValue, what, n, d.off-4)
	}
	return int(n), nil
}
