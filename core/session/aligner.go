package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thechosenone98/MP3Journaling/cache"
	"github.com/thechosenone98/MP3Journaling/core/marker"
	"github.com/thechosenone98/MP3Journaling/logger"
	"github.com/thechosenone98/MP3Journaling/model"
)

// ErrAlignment reports a marker file that cannot be matched to any audio
// segment under the creation-order walk. It means the group's files are
// inconsistent and the operator has to look at them; guessing an
// alignment would attach annotations to the wrong audio.
var ErrAlignment = errors.New("marker files do not align with audio segments")

// MarkerSource is one aligned marker input for a segment: either a real,
// already-parsed marker file or a placeholder for a segment recorded
// without a single button press.
type MarkerSource struct {
	Path        string
	Marks       model.MarkerSequence
	Placeholder bool
}

// Aligner pairs each audio segment of a group with its marker file.
type Aligner struct {
	durations *cache.DurationCache
}

// NewAligner returns an aligner that probes segment durations through the
// given cache.
func NewAligner(durations *cache.DurationCache) *Aligner {
	return &Aligner{durations: durations}
}

// Align produces exactly one MarkerSource per audio segment, in segment
// order.
//
// The device only creates a marker file once the button is pressed, so a
// split session can have fewer marker files than segments. Both lists are
// walked under one shared cursor: a segment whose recording finished
// strictly before a marker file came into existence cannot own it and
// gets a placeholder; the first segment still recording at that point is
// paired with the file. Trailing segments after the last marker file get
// placeholders too. Real marker files are parsed here, so a corrupt file
// fails the group before any audio work starts.
func (a *Aligner) Align(ctx context.Context, group *model.RecordingGroup) ([]MarkerSource, error) {
	aligned := make([]MarkerSource, 0, len(group.Audio))
	segIdx := 0

	for _, mf := range group.Markers {
		placed := false
		for segIdx < len(group.Audio) {
			seg := group.Audio[segIdx]
			dur, err := a.durations.Get(ctx, seg.Path)
			if err != nil {
				return nil, err
			}
			segIdx++

			segEnd := seg.CreatedAt.Add(time.Duration(dur * float64(time.Second)))
			if segEnd.Before(mf.CreatedAt) {
				aligned = append(aligned, MarkerSource{Placeholder: true})
				continue
			}

			marks, err := marker.ReadFile(mf.Path)
			if err != nil {
				return nil, err
			}
			aligned = append(aligned, MarkerSource{Path: mf.Path, Marks: marks})
			placed = true
			break
		}
		if !placed {
			return nil, fmt.Errorf("%w: group %s has no segment left for %s (%d segments, %d marker files)",
				ErrAlignment, group.Prefix, mf.Path, len(group.Audio), len(group.Markers))
		}
	}

	for segIdx < len(group.Audio) {
		aligned = append(aligned, MarkerSource{Placeholder: true})
		segIdx++
	}

	logger.Debug("Aligned recording group",
		logger.String("group", group.Prefix),
		logger.Int("segments", len(group.Audio)),
		logger.Int("markerFiles", len(group.Markers)))

	return aligned, nil
}
