// Package session reassembles split recorder output into whole recordings
// and carries each one through annotation classification and export.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/thechosenone98/MP3Journaling/logger"
	"github.com/thechosenone98/MP3Journaling/model"
)

// GroupMatcher extracts the recording-group key from a file name.
// Swapping the matcher adapts the scanner to another recorder's naming
// scheme without touching alignment or classification.
type GroupMatcher interface {
	// GroupKey returns the grouping key for a file name, or ok=false for
	// files that do not belong to any recording group.
	GroupKey(name string) (key string, ok bool)
}

// PrefixMatcher groups files by the name part before the first run of
// underscores, the convention the recorder uses when it splits a session:
// <prefix>_<counter>_<suffix>.<ext>.
type PrefixMatcher struct{}

var prefixPattern = regexp.MustCompile(`^([^_]+)_+[^_]+_`)

// GroupKey implements GroupMatcher.
func (PrefixMatcher) GroupKey(name string) (string, bool) {
	m := prefixPattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Scanner finds recording groups in a directory.
type Scanner struct {
	matcher   GroupMatcher
	audioExt  string
	markerExt string
}

// NewScanner returns a scanner that collects files with the given audio
// and marker extensions (dot included) into groups keyed by matcher.
func NewScanner(matcher GroupMatcher, audioExt, markerExt string) *Scanner {
	return &Scanner{
		matcher:   matcher,
		audioExt:  audioExt,
		markerExt: markerExt,
	}
}

// Scan builds one RecordingGroup per distinct key found in dir. Files
// that do not match the naming scheme or carry other extensions are left
// alone, so merged output and unrelated files never re-enter the
// pipeline. Audio and marker lists come back sorted by file name, which
// for the recorder's counter-based names is chronological order.
func (s *Scanner) Scan(dir string) ([]model.RecordingGroup, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan recordings dir %s: %w", dir, err)
	}

	groups := make(map[string]*model.RecordingGroup)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != s.audioExt && ext != s.markerExt {
			continue
		}
		key, ok := s.matcher.GroupKey(name)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}

		g := groups[key]
		if g == nil {
			g = &model.RecordingGroup{Prefix: key, Dir: dir}
			groups[key] = g
		}

		path := filepath.Join(dir, name)
		if ext == s.audioExt {
			g.Audio = append(g.Audio, model.AudioSegment{Path: path, CreatedAt: info.ModTime()})
		} else {
			g.Markers = append(g.Markers, model.MarkerFile{Path: path, CreatedAt: info.ModTime()})
		}
	}

	out := make([]model.RecordingGroup, 0, len(groups))
	for _, g := range groups {
		sort.Slice(g.Audio, func(i, j int) bool { return g.Audio[i].Path < g.Audio[j].Path })
		sort.Slice(g.Markers, func(i, j int) bool { return g.Markers[i].Path < g.Markers[j].Path })
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })

	logger.Debug("Scanned recordings directory",
		logger.String("dir", dir),
		logger.Int("groups", len(out)))

	return out, nil
}
