package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRecorderFile creates a file and pins its modification time, which
// the scanner reads as the segment's creation time.
func writeRecorderFile(t *testing.T, dir, name string, modTime time.Time, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return path
}

func TestPrefixMatcher(t *testing.T) {
	tests := []struct {
		name    string
		wantKey string
		wantOK  bool
	}{
		{"REC001_0001_250305.mp3", "REC001", true},
		{"VOICE__0001_A.mp3", "VOICE", true},
		{"A_B_C.tmk", "A", true},
		{"nounderscore.mp3", "", false},
		{"REC001_only.mp3", "", false},
		{"2024-03-05@09h00m00s_merged.mp3", "", false},
		{"_0001_250305.mp3", "", false},
	}

	var m PrefixMatcher
	for _, tt := range tests {
		key, ok := m.GroupKey(tt.name)
		assert.Equal(t, tt.wantOK, ok, tt.name)
		assert.Equal(t, tt.wantKey, key, tt.name)
	}
}

func TestScanGroupsByPrefix(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 3, 5, 9, 0, 0, 0, time.Local)

	writeRecorderFile(t, dir, "REC001_0002_250305.mp3", base.Add(10*time.Minute), "b")
	writeRecorderFile(t, dir, "REC001_0001_250305.mp3", base, "a")
	writeRecorderFile(t, dir, "REC001_0001_250305.tmk", base.Add(5*time.Minute), "[00001:00.00]\n")
	writeRecorderFile(t, dir, "REC002_0001_250305.mp3", base.Add(time.Hour), "c")

	// None of these may enter a group: merged output, wrong extension,
	// unmatched name, directory.
	writeRecorderFile(t, dir, "2024-03-05@09h00m00s_merged.mp3", base, "m")
	writeRecorderFile(t, dir, "notes.txt", base, "n")
	writeRecorderFile(t, dir, "loose.mp3", base, "l")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "REC003_0001_x.mp3"), 0755))

	s := NewScanner(PrefixMatcher{}, ".mp3", ".tmk")
	groups, err := s.Scan(dir)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	rec1 := groups[0]
	assert.Equal(t, "REC001", rec1.Prefix)
	assert.Equal(t, dir, rec1.Dir)
	require.Len(t, rec1.Audio, 2)
	assert.Equal(t, filepath.Join(dir, "REC001_0001_250305.mp3"), rec1.Audio[0].Path, "segments sorted by name")
	assert.Equal(t, filepath.Join(dir, "REC001_0002_250305.mp3"), rec1.Audio[1].Path)
	assert.True(t, rec1.Audio[0].CreatedAt.Equal(base), "creation time comes from mtime")
	require.Len(t, rec1.Markers, 1)
	assert.Equal(t, filepath.Join(dir, "REC001_0001_250305.tmk"), rec1.Markers[0].Path)

	rec2 := groups[1]
	assert.Equal(t, "REC002", rec2.Prefix)
	assert.Len(t, rec2.Audio, 1)
	assert.Empty(t, rec2.Markers)
}

func TestScanEmptyDir(t *testing.T) {
	s := NewScanner(PrefixMatcher{}, ".mp3", ".tmk")
	groups, err := s.Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestScanMissingDir(t *testing.T) {
	s := NewScanner(PrefixMatcher{}, ".mp3", ".tmk")
	_, err := s.Scan(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
