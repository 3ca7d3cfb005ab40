package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrExternalTool reports a failed invocation of the external audio tool.
// It is fatal for the recording group being processed; other groups are
// unaffected.
var ErrExternalTool = errors.New("external audio tool failed")

// Processor defines the audio operations the pipeline delegates to an
// external tool. Implementations copy codec streams rather than re-encode:
// the recorder's MP3 frame streams concatenate and cut cleanly as-is.
type Processor interface {
	// Concat joins the input files, in order, into one output file.
	Concat(ctx context.Context, inputs []string, output string) error

	// ExtractRange copies the [start, end] sub-range of input into output.
	// Offsets are seconds on the input's own timeline.
	ExtractRange(ctx context.Context, input, output string, start, end float64) error

	// Duration returns the input's duration in seconds.
	Duration(ctx context.Context, input string) (float64, error)
}

// DurationService is the subset of Processor the duration cache wraps.
type DurationService interface {
	Duration(ctx context.Context, input string) (float64, error)
}

// FormatSeek renders an offset the way the external tool's seek options
// expect it: H:MM:SS.cc with unpadded hours. Centisecond precision matches
// the marker format's granularity, so no annotation boundary is lost to
// rounding.
func FormatSeek(offset float64) string {
	if offset < 0 {
		offset = 0
	}
	centis := int64(math.Round(offset * 100))
	h := centis / 360000
	m := (centis % 360000) / 6000
	s := float64(centis%6000) / 100
	return fmt.Sprintf("%d:%02d:%05.2f", h, m, s)
}
