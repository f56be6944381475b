// Package report renders a ranked report to its text file.
package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/tops/internal/domain/model"
)

// File naming.
const (
	FilePrefix      = "tops_"
	FileExt         = ".txt"
	TimestampLayout = "2006-01-02T15-04-05"

	defaultMaxAttempts = 1000
	filePermission     = 0o644
)

// Placeholders for absent display metadata.
const (
	UnknownArtist     = "Unknown Artist"
	UnknownTitle      = "Unknown Title"
	UnknownDifficulty = "Unknown Difficulty"
)

// Writer writes reports into a directory, never replacing an existing file.
type Writer struct {
	dir         string
	now         func() time.Time
	maxAttempts int
	open        func(path string) (io.WriteCloser, error)
}

func openExclusive(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePermission)
}

// NewWriter creates a writer with configuration options.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		dir:         ".",
		now:         time.Now,
		maxAttempts: defaultMaxAttempts,
		open:        openExclusive,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// FileName returns the report name for t, with a numeric suffix when
// attempt is positive.
func FileName(t time.Time, attempt int) string {
	stamp := t.Format(TimestampLayout)
	if attempt > 0 {
		return fmt.Sprintf("%s%s_%d%s", FilePrefix, stamp, attempt, FileExt)
	}
	return FilePrefix + stamp + FileExt
}

// Write renders r into a new file and returns its path. A file that could not
// be written completely is removed.
func (w *Writer) Write(ctx context.Context, r model.RankedReport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, path, err := w.create()
	if err != nil {
		return "", err
	}

	if err := Render(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	return path, nil
}

func (w *Writer) create() (io.WriteCloser, string, error) {
	now := w.now()
	for attempt := range w.maxAttempts {
		path := filepath.Join(w.dir, FileName(now, attempt))
		f, err := w.open(path)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("%w %s: %w", ErrCreate, path, err)
		}
	}
	return nil, "", fmt.Errorf("%w: %d names taken for %s", ErrCreate, w.maxAttempts, FileName(now, 0))
}

// Render writes the report text to out.
func Render(out io.Writer, r model.RankedReport) error {
	bw := bufio.NewWriter(out)

	fmt.Fprintf(bw, "Total pp: %.2f\n", r.GrandTotal)
	fmt.Fprintf(bw, "Total pp (without bonus pp): %.2f\n", r.WeightedTotal)
	fmt.Fprintf(bw, "Bonus pp: %.2f\n", r.BonusTotal)
	fmt.Fprintf(bw, "9* PFCs: %d\n", r.FullComboCount)

	for i, e := range r.Top {
		fmt.Fprintf(bw, "%3d. %s\t%s [%s]\n", i+1,
			orDefault(e.Beatmap.Artist, UnknownArtist),
			orDefault(e.Beatmap.Title, UnknownTitle),
			orDefault(e.Beatmap.DifficultyName, UnknownDifficulty))
		fmt.Fprintf(bw, "     %.2fpp %s\n", e.Performance.PP, e.Score.Mods)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
