// Package filter implements query eligibility: which records a filtered query
// (by category, by time range, or both) may return, and indexes that
// enumerate the eligible records without a full scan.
package filter

import (
	"fmt"
	"strings"

	"github.com/hupe1980/sigann/model"
)

// Mode controls whether query filters gate candidate admission.
type Mode int

const (
	// ModeUniform admits only eligible records on every search path
	// (tree, graph and exhaustive alike).
	ModeUniform Mode = iota
	// ModeIgnore answers every query as if it were unfiltered.
	ModeIgnore
)

func (m Mode) String() string {
	switch m {
	case ModeUniform:
		return "uniform"
	case ModeIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseMode parses the textual form of a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform":
		return ModeUniform, nil
	case "ignore", "none":
		return ModeIgnore, nil
	default:
		return 0, fmt.Errorf("unknown filter mode %q", s)
	}
}

// Active reports whether q's filters apply under mode m.
func (m Mode) Active(q *model.Query) bool {
	return m == ModeUniform && q.Kind != model.KindNormal
}

// Eligible reports whether rec satisfies every filter carried by q's kind.
func Eligible(q *model.Query, rec *model.Record) bool {
	if q.Kind.FiltersCategory() && rec.Category != q.Category {
		return false
	}
	if q.Kind.FiltersTime() && (rec.Timestamp < q.TimeLo || rec.Timestamp > q.TimeHi) {
		return false
	}
	return true
}

// InTime reports whether ts lies in q's closed time range.
func InTime(q *model.Query, ts float32) bool {
	return q.TimeLo <= ts && ts <= q.TimeHi
}
