package matcher

import (
	"fmt"

	"github.com/okian/tops/internal/domain/model"
)

// Kind classifies the outcome of matching one record.
type Kind uint8

// Outcome kinds.
const (
	KindMatched Kind = iota
	KindSkipped
	KindRejected
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindMatched:
		return "matched"
	case KindSkipped:
		return "skipped"
	case KindRejected:
		return "rejected"
	case KindFatal:
		return "fatal"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Reason explains why a record was skipped. Values double as metric labels.
type Reason string

// Skip reasons.
const (
	ReasonBeatmapNotFound   Reason = "beatmap_not_found"
	ReasonRanked            Reason = "ranked"
	ReasonContentUnreadable Reason = "content_unreadable"
	ReasonEvaluationFailed  Reason = "evaluation_failed"
)

// Outcome is the result of matching one record. Entry is set for matched
// records, Reason for skipped ones and Err whenever an error caused the
// outcome.
type Outcome struct {
	Kind   Kind
	Entry  model.ScoredEntry
	Reason Reason
	Err    error
	// PP is the rejected value for outliers.
	PP float64
}

func matched(e model.ScoredEntry) Outcome { return Outcome{Kind: KindMatched, Entry: e} }

func skipped(reason Reason, err error) Outcome {
	return Outcome{Kind: KindSkipped, Reason: reason, Err: err}
}

func rejected(pp float64) Outcome { return Outcome{Kind: KindRejected, PP: pp} }

func fatal(err error) Outcome { return Outcome{Kind: KindFatal, Err: err} }
