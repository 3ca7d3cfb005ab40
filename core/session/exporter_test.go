package session

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechosenone98/MP3Journaling/core/classify"
	"github.com/thechosenone98/MP3Journaling/model"
)

func testMerged(dir string) *model.MergedRecording {
	return &model.MergedRecording{
		Name:      "2024-01-15@09h30m00s_merged",
		AudioPath: filepath.Join(dir, "2024-01-15@09h30m00s_merged.mp3"),
		CreatedAt: time.Date(2024, 1, 15, 9, 30, 0, 0, time.Local),
		Duration:  3600,
	}
}

func TestExportNamesAndSequencesClips(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "exports")
	merged := testMerged(dir)

	intervals := []classify.TimeInterval{
		{Start: 40, End: 100, Pattern: classify.ShortNote},
		{Start: 200, End: 950, Pattern: classify.Conversation},
		{Start: 1000, End: 1060, Pattern: classify.ShortNote},
	}

	proc := newFakeProcessor()
	e := NewExporter(proc, out, ".mp3")
	clips, err := e.Export(context.Background(), merged, intervals)
	require.NoError(t, err)
	require.Len(t, clips, 3)

	// Clip names carry the wall-clock start, the pattern and a per-pattern
	// sequence number.
	assert.Equal(t, filepath.Join(out, "SHORT_NOTE", "2024-01-15",
		"2024-01-15@09h30m40s_SHORT_NOTE_1.mp3"), clips[0].Path)
	assert.Equal(t, filepath.Join(out, "CONVERSATION", "2024-01-15",
		"2024-01-15@09h33m20s_CONVERSATION_1.mp3"), clips[1].Path)
	assert.Equal(t, filepath.Join(out, "SHORT_NOTE", "2024-01-15",
		"2024-01-15@09h46m40s_SHORT_NOTE_2.mp3"), clips[2].Path)

	for _, c := range clips {
		assert.FileExists(t, c.Path)
		assert.False(t, strings.Contains(c.Object, "\\"), "object keys use forward slashes")
	}
	assert.Equal(t, "SHORT_NOTE/2024-01-15/2024-01-15@09h30m40s_SHORT_NOTE_1.mp3", clips[0].Object)

	calls := proc.extractCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, merged.AudioPath, calls[0].input)
	assert.Equal(t, 40.0, calls[0].start)
	assert.Equal(t, 100.0, calls[0].end)
	assert.Equal(t, 200.0, calls[1].start)
	assert.Equal(t, 950.0, calls[1].end)
}

func TestExportSkipsConfidentialIntervals(t *testing.T) {
	dir := t.TempDir()
	merged := testMerged(dir)

	intervals := []classify.TimeInterval{
		{Start: 100, End: 500, Pattern: classify.Confidential},
		{Start: 600, End: 660, Pattern: classify.ShortNote},
	}

	proc := newFakeProcessor()
	e := NewExporter(proc, filepath.Join(dir, "exports"), ".mp3")
	clips, err := e.Export(context.Background(), merged, intervals)
	require.NoError(t, err)

	require.Len(t, clips, 1, "confidential spans are classified but never written out")
	assert.Equal(t, classify.ShortNote, clips[0].Pattern)
	require.Len(t, proc.extractCalls(), 1)
	assert.Equal(t, 600.0, proc.extractCalls()[0].start)
}

func TestExportContinuesPastFailedCut(t *testing.T) {
	dir := t.TempDir()
	merged := testMerged(dir)

	intervals := []classify.TimeInterval{
		{Start: 40, End: 100, Pattern: classify.ShortNote},
		{Start: 1000, End: 1060, Pattern: classify.ShortNote},
	}

	proc := newFakeProcessor()
	cutErr := errors.New("disk full")
	proc.extractErr = func(input, output string, start, end float64) error {
		if start == 40 {
			return cutErr
		}
		return nil
	}

	e := NewExporter(proc, filepath.Join(dir, "exports"), ".mp3")
	clips, err := e.Export(context.Background(), merged, intervals)

	require.Error(t, err)
	assert.ErrorIs(t, err, cutErr)
	require.Len(t, clips, 1, "the batch keeps going after one failed cut")

	// The sequence number advanced past the failed clip, so a rerun of the
	// session produces the same names.
	assert.Equal(t, 2, clips[0].Sequence)
	assert.Contains(t, clips[0].Path, "_SHORT_NOTE_2.mp3")
}

func TestExportFilesClipByItsOwnDay(t *testing.T) {
	dir := t.TempDir()
	merged := testMerged(dir)
	merged.CreatedAt = time.Date(2024, 1, 15, 23, 59, 0, 0, time.Local)

	intervals := []classify.TimeInterval{
		{Start: 120, End: 180, Pattern: classify.ShortNote},
	}

	proc := newFakeProcessor()
	e := NewExporter(proc, filepath.Join(dir, "exports"), ".mp3")
	clips, err := e.Export(context.Background(), merged, intervals)
	require.NoError(t, err)
	require.Len(t, clips, 1)

	// The session started before midnight but the clip did not.
	assert.Contains(t, clips[0].Path, filepath.Join("SHORT_NOTE", "2024-01-16"))
	assert.Contains(t, clips[0].Path, "2024-01-16@00h01m00s_SHORT_NOTE_1.mp3")
}

func TestExportNothingToDo(t *testing.T) {
	dir := t.TempDir()
	merged := testMerged(dir)

	proc := newFakeProcessor()
	e := NewExporter(proc, filepath.Join(dir, "exports"), ".mp3")
	clips, err := e.Export(context.Background(), merged, nil)
	require.NoError(t, err)
	assert.Empty(t, clips)
	assert.Empty(t, proc.extractCalls())
}
