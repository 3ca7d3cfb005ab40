package marker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechosenone98/MP3Journaling/model"
)

func writeTempMarkerFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rec_001_A.tmk")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFile(t *testing.T) {
	path := writeTempMarkerFile(t, "[00000:05.00]\n[00001:40.50]\n[00003:20.00]\n")

	marks, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, marks, 3)
	assert.InDelta(t, 5.0, marks[0].Offset, 1e-9)
	assert.InDelta(t, 100.5, marks[1].Offset, 1e-9)
	assert.InDelta(t, 200.0, marks[2].Offset, 1e-9)
}

func TestReadFileCRLF(t *testing.T) {
	path := writeTempMarkerFile(t, "[00000:05.00]\r\n[00000:10.00]\r\n")

	marks, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.InDelta(t, 10.0, marks[1].Offset, 1e-9)
}

func TestReadFileEmptyIsNotNil(t *testing.T) {
	path := writeTempMarkerFile(t, "")

	marks, err := ReadFile(path)
	require.NoError(t, err)
	require.NotNil(t, marks, "empty marker file still means the recording was annotated")
	assert.Len(t, marks, 0)
}

func TestReadFileStripsBOM(t *testing.T) {
	path := writeTempMarkerFile(t, "\ufeff[00000:05.00]\n[00000:10.00]\n")

	marks, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.InDelta(t, 5.0, marks[0].Offset, 1e-9)
}

func TestReadFileTrailingBlankLine(t *testing.T) {
	path := writeTempMarkerFile(t, "[00000:05.00]\n[00000:10.00]\n\n")

	marks, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, marks, 2)
}

func TestReadFileRejectsInteriorBlankLine(t *testing.T) {
	path := writeTempMarkerFile(t, "[00000:05.00]\n\n[00000:10.00]\n")

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReadFileRejectsMalformedLine(t *testing.T) {
	path := writeTempMarkerFile(t, "[00000:05.00]\ngarbage\n")

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadFileRejectsBackwardsOffsets(t *testing.T) {
	path := writeTempMarkerFile(t, "[00001:00.00]\n[00000:30.00]\n")

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.tmk"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFormat, "a missing file is an IO problem, not a format problem")
}

func TestWriteFileRoundTrip(t *testing.T) {
	in := model.MarkerSequence{
		{Offset: 0},
		{Offset: 5},
		{Offset: 100.5},
		{Offset: 99999*60 + 59.99},
	}
	path := filepath.Join(t.TempDir(), "merged.tmk")
	require.NoError(t, WriteFile(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[00000:00.00]\n[00000:05.00]\n[00001:40.50]\n[99999:59.99]\n", string(raw))

	out, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.InDelta(t, in[i].Offset, out[i].Offset, 1e-6, "mark %d", i)
	}
}
