package osudb

import "errors"

// Sentinel errors returned by the decoders. Callers match with errors.Is;
// the wrapped message carries the byte offset.
var (
	ErrTruncated     = errors.New("unexpected end of database")
	ErrInvalidString = errors.New("invalid string marker")
	ErrInvalidValue  = errors.New("invalid field value")
	ErrOpen          = errors.New("open database")
)
