package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thechosenone98/MP3Journaling/cache"
	"github.com/thechosenone98/MP3Journaling/core/audio"
	"github.com/thechosenone98/MP3Journaling/core/marker"
	"github.com/thechosenone98/MP3Journaling/logger"
	"github.com/thechosenone98/MP3Journaling/model"
)

// mergedTimeFormat names merged and exported files after a wall-clock
// instant without characters that bother filesystems.
const mergedTimeFormat = "2006-01-02@15h04m05s"

// Merger reassembles one aligned recording group into a single session:
// one audio file and one marker file on a continuous timeline.
type Merger struct {
	proc      audio.Processor
	durations *cache.DurationCache
	audioExt  string
	markerExt string
}

// NewMerger returns a merger writing output files with the given
// extensions (dot included).
func NewMerger(proc audio.Processor, durations *cache.DurationCache, audioExt, markerExt string) *Merger {
	return &Merger{
		proc:      proc,
		durations: durations,
		audioExt:  audioExt,
		markerExt: markerExt,
	}
}

// Merge produces the MergedRecording for a group whose aligned marker
// sources came from Align.
//
// A single-segment group is adopted by rename, which keeps the marker
// file bit-identical to what the device wrote. A multi-segment group is
// concatenated in stream-copy mode while every mark is shifted by the
// total duration of the segments before it. Original files are left in
// place; Cleanup removes them once the group has been fully processed.
func (m *Merger) Merge(ctx context.Context, group *model.RecordingGroup, aligned []MarkerSource) (*model.MergedRecording, error) {
	if len(group.Audio) == 0 {
		return nil, fmt.Errorf("recording group %s has no audio segments", group.Prefix)
	}
	if len(aligned) != len(group.Audio) {
		return nil, fmt.Errorf("recording group %s: %d marker sources for %d segments",
			group.Prefix, len(aligned), len(group.Audio))
	}

	base := group.Audio[0].CreatedAt
	for _, seg := range group.Audio[1:] {
		if seg.CreatedAt.Before(base) {
			base = seg.CreatedAt
		}
	}
	name := base.Format(mergedTimeFormat) + "_merged"

	merged := &model.MergedRecording{
		Name:      name,
		AudioPath: filepath.Join(group.Dir, name+m.audioExt),
		CreatedAt: base,
	}

	annotated := false
	for _, src := range aligned {
		if !src.Placeholder {
			annotated = true
			break
		}
	}

	if len(group.Audio) == 1 {
		return m.adoptSingle(ctx, group, aligned, merged, annotated)
	}

	// Shift marks onto the session timeline first; it is pure arithmetic
	// and a duration probe failing here skips the expensive concat.
	var marks model.MarkerSequence
	if annotated {
		marks = make(model.MarkerSequence, 0)
	}
	totalOffset := 0.0
	for i, seg := range group.Audio {
		if src := aligned[i]; !src.Placeholder {
			for _, mk := range src.Marks {
				marks = append(marks, model.TrackMark{Offset: mk.Offset + totalOffset})
			}
		}
		dur, err := m.durations.Get(ctx, seg.Path)
		if err != nil {
			return nil, err
		}
		totalOffset += dur
	}
	merged.Duration = totalOffset

	inputs := make([]string, len(group.Audio))
	for i, seg := range group.Audio {
		inputs[i] = seg.Path
	}
	if err := m.proc.Concat(ctx, inputs, merged.AudioPath); err != nil {
		return nil, err
	}

	if annotated {
		merged.MarkerPath = filepath.Join(group.Dir, name+m.markerExt)
		if err := marker.WriteFile(merged.MarkerPath, marks); err != nil {
			return nil, err
		}
		merged.Marks = marks
	}

	logger.Info("Merged recording group",
		logger.String("group", group.Prefix),
		logger.String("output", merged.AudioPath),
		logger.Int("segments", len(group.Audio)),
		logger.Int("marks", len(marks)),
		logger.Float64("duration", merged.Duration))

	return merged, nil
}

// adoptSingle turns a one-segment group into the merged recording by
// renaming its files into the canonical naming scheme.
func (m *Merger) adoptSingle(ctx context.Context, group *model.RecordingGroup, aligned []MarkerSource, merged *model.MergedRecording, annotated bool) (*model.MergedRecording, error) {
	seg := group.Audio[0]

	// Probe before the rename so the cache key is the path that exists.
	dur, err := m.durations.Get(ctx, seg.Path)
	if err != nil {
		return nil, err
	}
	merged.Duration = dur

	if err := os.Rename(seg.Path, merged.AudioPath); err != nil {
		return nil, fmt.Errorf("adopt audio segment %s: %w", seg.Path, err)
	}

	if annotated {
		src := aligned[0]
		merged.MarkerPath = filepath.Join(group.Dir, merged.Name+m.markerExt)
		if err := os.Rename(src.Path, merged.MarkerPath); err != nil {
			return nil, fmt.Errorf("adopt marker file %s: %w", src.Path, err)
		}
		merged.Marks = src.Marks
	}

	logger.Info("Adopted single-segment recording",
		logger.String("group", group.Prefix),
		logger.String("output", merged.AudioPath),
		logger.Bool("annotated", annotated))

	return merged, nil
}

// Cleanup removes the group's original files once the merged recording
// has been fully processed. Best-effort: files renamed away by the
// single-segment path, or already removed by hand, are not errors.
func (m *Merger) Cleanup(group *model.RecordingGroup) {
	for _, seg := range group.Audio {
		removeIfPresent(seg.Path)
	}
	for _, mf := range group.Markers {
		removeIfPresent(mf.Path)
	}
}

func removeIfPresent(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove original recording file",
			logger.String("path", path),
			logger.ErrorField(err))
	}
}
