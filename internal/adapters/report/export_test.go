package report

import "io"

// WithOpener replaces how report files are created.
func WithOpener(open func(path string) (io.WriteCloser, error)) Option {
	return func(w *Writer) {
		w.open = open
	}
}

// OpenExclusive is the default opener.
var OpenExclusive = openExclusive
