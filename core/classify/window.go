package classify

import (
	"github.com/thechosenone98/MP3Journaling/model"
)

// DefaultGapSeconds is the default bound on the accumulated inter-mark gap
// within one burst. Marks further apart than this belong to separate
// annotations.
const DefaultGapSeconds = 30.0

// Window is one classified burst: its pattern and the index of the burst's
// first mark in the source sequence.
type Window struct {
	Pattern Pattern
	Start   int
}

// Classifier partitions an ordered mark sequence into classified bursts.
type Classifier struct {
	gap float64
}

// NewClassifier returns a classifier with the given gap threshold in
// seconds. Non-positive values fall back to DefaultGapSeconds.
func NewClassifier(gapSeconds float64) *Classifier {
	if gapSeconds <= 0 {
		gapSeconds = DefaultGapSeconds
	}
	return &Classifier{gap: gapSeconds}
}

// Classify runs a single pass over marks and groups them into windows.
//
// A run grows while the gap accumulated since its first mark stays within
// the threshold. The mark that pushes the accumulated gap over the
// threshold closes the run: for span patterns (three or four presses) it
// is kept as the span's end marker, for every other run length it is
// handed back to open the next run. A run that reaches MaxArity closes
// itself without needing a gap. Marks must already be in recording order;
// Classify trusts the reader to have rejected anything else.
func (c *Classifier) Classify(marks model.MarkerSequence) ([]Window, error) {
	var windows []Window
	var (
		i     int
		run   int
		gap   float64
		fresh = true
	)
	for i < len(marks) {
		if run < MaxArity {
			if fresh {
				fresh = false
			} else {
				gap += marks[i].Offset - marks[i-1].Offset
			}
			i++
		}
		switch {
		case run == MaxArity:
			// The current mark was not consumed; it starts the next run.
			windows = append(windows, Window{Pattern: ProjectIdea, Start: i - MaxArity})
			run, gap, fresh = 0, 0, true
		case gap > c.gap:
			pattern, err := PatternForArity(run)
			if err != nil {
				return nil, err
			}
			// The run's marks sit at i-run-1 .. i-2; the mark at i-1 is the
			// boundary that closed it.
			start := i - run - 1
			if !pattern.SpanBased() {
				i--
			}
			windows = append(windows, Window{Pattern: pattern, Start: start})
			run, gap, fresh = 0, 0, true
		default:
			run++
		}
	}
	if run > 0 {
		// Input ended mid-run; flush it without a boundary mark.
		pattern, err := PatternForArity(run)
		if err != nil {
			return nil, err
		}
		windows = append(windows, Window{Pattern: pattern, Start: i - run})
	}
	return windows, nil
}
