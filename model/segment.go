package model

import "time"

// AudioSegment represents one physical audio file written by the recorder.
// Long sessions are split into several segments by the device firmware.
type AudioSegment struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarkerFile represents one physical marker file written alongside a
// segment. Segments recorded without any button press have no marker file.
type MarkerFile struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecordingGroup is the set of files one recording session was split into,
// gathered by shared name prefix. Both slices are sorted by file name,
// which under the recorder's naming convention is chronological order.
type RecordingGroup struct {
	Prefix  string         `json:"prefix"`
	Dir     string         `json:"dir"`
	Audio   []AudioSegment `json:"audio"`
	Markers []MarkerFile   `json:"markers"`
}

// MergedRecording is a fully reassembled session: one audio file and one
// marker sequence on a continuous timeline starting at CreatedAt.
type MergedRecording struct {
	Name       string         `json:"name"`
	AudioPath  string         `json:"audioPath"`
	MarkerPath string         `json:"markerPath"` // Empty when Marks is nil
	CreatedAt  time.Time      `json:"createdAt"`  // Creation time of the earliest constituent segment
	Duration   float64        `json:"duration"`   // Sum of constituent segment durations, seconds
	Marks      MarkerSequence `json:"marks"`      // nil means the session had no marker files at all
}

// HasAnnotations reports whether the session produced any marker files.
// A session can be annotated yet carry zero marks (empty marker files);
// only a session with no marker files at all skips classification.
func (m *MergedRecording) HasAnnotations() bool {
	return m.Marks != nil
}
