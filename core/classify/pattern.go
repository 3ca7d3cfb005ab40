// Package classify turns a recording's track marks into annotation windows
// and resolves those windows into concrete time intervals.
//
// The recorder has a single marker button. The operator encodes intent by
// pressing it in rapid bursts: the number of presses in one burst selects
// the annotation pattern. Patterns of one, two or five presses save a fixed
// lookback window before the burst; patterns of three or four presses open
// a span that a later single press closes.
package classify

import (
	"errors"
	"fmt"
)

// ErrPattern reports a burst that does not map onto the button grammar, or
// a window whose marks are missing from the sequence it was classified
// from. Either way the annotation stream is inconsistent and the whole
// recording group should be surfaced to the operator.
var ErrPattern = errors.New("invalid annotation pattern")

// Pattern identifies one annotation kind. The numeric value is the burst
// arity, the number of consecutive button presses that selects it.
type Pattern int

const (
	ShortNote    Pattern = 1 // Keep the last minute
	LongNote     Pattern = 2 // Keep the last two minutes
	Conversation Pattern = 3 // Span, closed by the next mark
	Confidential Pattern = 4 // Span, closed by the next mark; never exported
	ProjectIdea  Pattern = 5 // Keep the last five minutes
)

// MaxArity is the longest burst the grammar distinguishes. The classifier
// forces a boundary once a run reaches it.
const MaxArity = 5

type patternInfo struct {
	name     string
	lookback float64 // Seconds kept before the burst; 0 for span patterns
	skip     int     // Marks one window consumes, terminator included
	span     bool
	export   bool
}

var patterns = map[Pattern]patternInfo{
	ShortNote:    {name: "SHORT_NOTE", lookback: 60, skip: 1, export: true},
	LongNote:     {name: "LONG_NOTE", lookback: 120, skip: 2, export: true},
	Conversation: {name: "CONVERSATION", skip: 4, span: true, export: true},
	Confidential: {name: "CONFIDENTIAL", skip: 5, span: true, export: false},
	ProjectIdea:  {name: "PROJECT_IDEA", lookback: 300, skip: 5, export: true},
}

// PatternForArity maps a run length onto its pattern.
func PatternForArity(arity int) (Pattern, error) {
	p := Pattern(arity)
	if _, ok := patterns[p]; !ok {
		return 0, fmt.Errorf("%w: run of %d marks", ErrPattern, arity)
	}
	return p, nil
}

// Valid reports whether p is one of the known patterns.
func (p Pattern) Valid() bool {
	_, ok := patterns[p]
	return ok
}

// Name returns the canonical upper-case pattern name used in export paths
// and the catalog.
func (p Pattern) Name() string {
	if info, ok := patterns[p]; ok {
		return info.name
	}
	return fmt.Sprintf("PATTERN(%d)", int(p))
}

func (p Pattern) String() string { return p.Name() }

// Lookback returns the default number of seconds the pattern keeps before
// its burst. Zero for span patterns.
func (p Pattern) Lookback() float64 { return patterns[p].lookback }

// Skip returns how many marks one window of this pattern consumes from the
// sequence, including the span terminator where there is one.
func (p Pattern) Skip() int { return patterns[p].skip }

// SpanBased reports whether the pattern's interval is bounded by two marks
// of its own run rather than computed by lookback.
func (p Pattern) SpanBased() bool { return patterns[p].span }

// Exportable reports whether intervals of this pattern produce output
// files. Confidential spans exist to exclude audio, so they never do.
func (p Pattern) Exportable() bool { return patterns[p].export }
