package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechosenone98/MP3Journaling/db"
	"github.com/thechosenone98/MP3Journaling/model"
)

// openTestCatalog points the shared catalog connection at a throwaway
// database file for the duration of one test.
func openTestCatalog(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.sqlite")
	require.NoError(t, db.ConnectDB(path))
	require.NoError(t, db.InitDB())
	t.Cleanup(func() { _ = db.CloseDB() })
}

func sampleRecord(name string, processedAt time.Time) *model.SessionRecord {
	return &model.SessionRecord{
		Name:         name,
		SourcePrefix: "REC001",
		SegmentCount: 3,
		MarkerCount:  3,
		Duration:     5400.5,
		CreatedAt:    time.Unix(1700000000, 0),
		ProcessedAt:  processedAt,
		Intervals: []model.IntervalRecord{
			{Pattern: "SHORT_NOTE", StartSec: 40, EndSec: 100},
			{Pattern: "CONVERSATION", StartSec: 200, EndSec: 950},
		},
		Exports: []model.ExportRecord{
			{Pattern: "SHORT_NOTE", Sequence: 1, Path: "/out/SHORT_NOTE/a.mp3", StartSec: 40, EndSec: 100},
		},
	}
}

func TestRecordSessionRoundTrip(t *testing.T) {
	openTestCatalog(t)
	repo := NewSQLiteSessionRepository()

	want := sampleRecord("2024-01-15@09h30m00s_merged", time.Unix(1700003600, 0))
	id, err := repo.RecordSession(want)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	got, err := repo.SessionByName(want.Name)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.SourcePrefix, got.SourcePrefix)
	assert.Equal(t, want.SegmentCount, got.SegmentCount)
	assert.Equal(t, want.MarkerCount, got.MarkerCount)
	assert.Equal(t, want.Duration, got.Duration)
	assert.WithinDuration(t, want.CreatedAt, got.CreatedAt, time.Millisecond)
	assert.WithinDuration(t, want.ProcessedAt, got.ProcessedAt, time.Millisecond)

	require.Len(t, got.Intervals, 2)
	assert.Equal(t, "SHORT_NOTE", got.Intervals[0].Pattern)
	assert.Equal(t, 40.0, got.Intervals[0].StartSec)
	assert.Equal(t, 100.0, got.Intervals[0].EndSec)
	assert.Equal(t, "CONVERSATION", got.Intervals[1].Pattern)

	require.Len(t, got.Exports, 1)
	assert.Equal(t, "SHORT_NOTE", got.Exports[0].Pattern)
	assert.Equal(t, 1, got.Exports[0].Sequence)
	assert.Equal(t, "/out/SHORT_NOTE/a.mp3", got.Exports[0].Path)
}

func TestRecordSessionReplacesPreviousRecord(t *testing.T) {
	openTestCatalog(t)
	repo := NewSQLiteSessionRepository()

	first := sampleRecord("2024-01-15@09h30m00s_merged", time.Unix(1700003600, 0))
	_, err := repo.RecordSession(first)
	require.NoError(t, err)

	second := sampleRecord("2024-01-15@09h30m00s_merged", time.Unix(1700007200, 0))
	second.SegmentCount = 5
	second.Intervals = second.Intervals[:1]
	second.Exports = nil
	_, err = repo.RecordSession(second)
	require.NoError(t, err)

	all, err := repo.RecentSessions(10)
	require.NoError(t, err)
	require.Len(t, all, 1, "reprocessing must replace, not duplicate")

	got := all[0]
	assert.Equal(t, 5, got.SegmentCount)
	assert.Len(t, got.Intervals, 1, "old intervals must be gone")
	assert.Empty(t, got.Exports, "old exports must be gone")
}

func TestSessionByNameMissing(t *testing.T) {
	openTestCatalog(t)
	repo := NewSQLiteSessionRepository()

	got, err := repo.SessionByName("never-recorded")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecentSessionsOrdersNewestFirst(t *testing.T) {
	openTestCatalog(t)
	repo := NewSQLiteSessionRepository()

	base := time.Unix(1700000000, 0)
	for i, name := range []string{"sess-a", "sess-b", "sess-c"} {
		rec := sampleRecord(name, base.Add(time.Duration(i)*time.Hour))
		_, err := repo.RecordSession(rec)
		require.NoError(t, err)
	}

	got, err := repo.RecentSessions(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "sess-c", got[0].Name)
	assert.Equal(t, "sess-b", got[1].Name)
}
