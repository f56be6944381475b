package report

import "errors"

// Report errors.
var (
	ErrCreate = errors.New("create report file")
	ErrWrite  = errors.New("write report")
)
