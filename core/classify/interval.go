package classify

import (
	"fmt"

	"github.com/thechosenone98/MP3Journaling/model"
)

// TimeInterval is one resolved annotation: a concrete span on the merged
// recording's timeline. Start never exceeds End.
type TimeInterval struct {
	Start   float64
	End     float64
	Pattern Pattern
}

// Resolver maps classified windows onto time intervals. Lookback overrides
// replace the pattern table's defaults for the given patterns; patterns
// without an override (or with a non-positive one) keep their default.
type Resolver struct {
	lookbacks map[Pattern]float64
}

// NewResolver returns a resolver with the given per-pattern lookback
// overrides. A nil map keeps all defaults.
func NewResolver(lookbacks map[Pattern]float64) *Resolver {
	return &Resolver{lookbacks: lookbacks}
}

func (r *Resolver) lookback(p Pattern) float64 {
	if v, ok := r.lookbacks[p]; ok && v > 0 {
		return v
	}
	return p.Lookback()
}

// Resolve turns each window into a time interval, walking the mark
// sequence with a cursor advanced by each pattern's skip count.
//
// A lookback interval never starts before the previous window's last
// consumed mark. That clamp is what keeps a note pressed minutes after a
// confidential span from accidentally re-capturing the protected audio.
func (r *Resolver) Resolve(windows []Window, marks model.MarkerSequence) ([]TimeInterval, error) {
	intervals := make([]TimeInterval, 0, len(windows))
	idx := 0
	for _, w := range windows {
		if !w.Pattern.Valid() {
			return nil, fmt.Errorf("%w: window with arity %d", ErrPattern, int(w.Pattern))
		}
		if idx != w.Start {
			return nil, fmt.Errorf("%w: window claims mark %d but cursor is at %d", ErrPattern, w.Start, idx)
		}
		last := idx + w.Pattern.Skip() - 1
		if last >= len(marks) {
			return nil, fmt.Errorf("%w: %s window at mark %d needs %d marks but only %d remain",
				ErrPattern, w.Pattern, idx, w.Pattern.Skip(), len(marks)-idx)
		}

		var start, end float64
		if w.Pattern.SpanBased() {
			// The last two marks of the run bound the span: the burst's
			// final press opens it, the terminating press closes it.
			start = marks[last-1].Offset
			end = marks[last].Offset
		} else {
			end = marks[idx].Offset
			start = end - r.lookback(w.Pattern)
			if idx > 0 && start < marks[idx-1].Offset {
				start = marks[idx-1].Offset
			}
			if start < 0 {
				start = 0
			}
		}
		intervals = append(intervals, TimeInterval{Start: start, End: end, Pattern: w.Pattern})
		idx += w.Pattern.Skip()
	}
	return intervals, nil
}
