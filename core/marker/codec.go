// Package marker reads and writes the recorder's track-marker files.
//
// A marker file is a plain-text list of timestamps, one per line, in the
// fixed-width form the device firmware emits:
//
//	[MMMMM:SS.ss]
//
// Minutes are zero-padded to five digits, seconds to two digits with two
// decimal places. Offsets are relative to the start of the audio file the
// marker file accompanies.
package marker

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrFormat reports a marker file that does not match the recorder's
// fixed-width timestamp format. It always means corrupt or foreign input,
// so callers treat it as fatal for the file's whole recording group.
var ErrFormat = errors.New("malformed marker data")

// Byte layout of one encoded mark: "[MMMMM:SS.ss]".
const (
	markWidth   = 13
	minutesLo   = 1 // First minutes digit
	minutesHi   = 6 // Colon position, exclusive bound of the minutes field
	secondsLo   = 7 // First seconds digit
	secondsHi   = 12
	decimalMark = 9 // '.' between whole and fractional seconds
)

// ParseMark decodes one timestamp line into an offset in seconds.
func ParseMark(text string) (float64, error) {
	if len(text) != markWidth {
		return 0, fmt.Errorf("%w: %q is %d bytes, want %d", ErrFormat, text, len(text), markWidth)
	}
	if text[0] != '[' || text[markWidth-1] != ']' || text[minutesHi] != ':' || text[decimalMark] != '.' {
		return 0, fmt.Errorf("%w: %q does not match [MMMMM:SS.ss]", ErrFormat, text)
	}
	minutes, err := strconv.ParseUint(text[minutesLo:minutesHi], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad minutes field in %q: %v", ErrFormat, text, err)
	}
	seconds, err := strconv.ParseFloat(text[secondsLo:secondsHi], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad seconds field in %q: %v", ErrFormat, text, err)
	}
	if seconds < 0 || seconds >= 60 {
		return 0, fmt.Errorf("%w: seconds field %.2f out of range in %q", ErrFormat, seconds, text)
	}
	return float64(minutes)*60 + seconds, nil
}

// FormatMark encodes an offset in seconds back into the device's
// fixed-width form. FormatMark and ParseMark round-trip exactly for any
// offset at the device's 0.01s granularity. Offsets off the grid (marks
// shifted by fractional probe durations) are snapped to the nearest
// centisecond first, so the seconds field can never render as "60.00".
func FormatMark(offset float64) string {
	offset = math.Round(offset*100) / 100
	minutes := int(offset / 60)
	seconds := offset - float64(minutes)*60
	return fmt.Sprintf("[%05d:%05.2f]", minutes, seconds)
}
