package service

import "errors"

// Run errors. Each aborts the run.
var (
	ErrLoad   = errors.New("load source database")
	ErrMatch  = errors.New("match scores")
	ErrReport = errors.New("write report")
)
