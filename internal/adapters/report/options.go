package report

import "time"

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithDir sets the directory reports are written to.
func WithDir(dir string) Option {
	return func(w *Writer) {
		if dir != "" {
			w.dir = dir
		}
	}
}

// WithClock sets the time source used for file names.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		if now != nil {
			w.now = now
		}
	}
}

// WithMaxAttempts bounds how many suffixed names are tried when the plain
// name is taken.
func WithMaxAttempts(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}
