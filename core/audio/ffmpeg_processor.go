package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/thechosenone98/MP3Journaling/logger"
)

// FFmpegProcessor implements the Processor interface using ffmpeg and its
// companion ffprobe.
type FFmpegProcessor struct {
	ffmpegPath string
}

// NewFFmpegProcessor creates a new FFmpegProcessor. An empty path falls
// back to resolving "ffmpeg" on PATH.
func NewFFmpegProcessor(ffmpegPath string) *FFmpegProcessor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegProcessor{ffmpegPath: ffmpegPath}
}

func (p *FFmpegProcessor) ffprobePath() string {
	if strings.Contains(p.ffmpegPath, "ffmpeg") {
		return strings.Replace(p.ffmpegPath, "ffmpeg", "ffprobe", 1)
	}
	return "ffprobe"
}

// Concat joins the inputs with the concat demuxer in stream-copy mode.
func (p *FFmpegProcessor) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: concat called with no inputs for %s", ErrExternalTool, output)
	}

	listFile, err := writeConcatList(inputs, output)
	if err != nil {
		return err
	}
	defer os.Remove(listFile)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		"-y",
		output,
	}

	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("Executing ffmpeg concat",
		logger.String("output", output),
		logger.Int("inputs", len(inputs)))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: ffmpeg concat failed for %s: %v\nFFmpeg Error: %s",
			ErrExternalTool, output, err, stderr.String())
	}
	return nil
}

// writeConcatList writes the demuxer's input list next to the output file.
// Paths are made absolute so the list's own location never changes what
// the entries point at.
func writeConcatList(inputs []string, output string) (string, error) {
	var b strings.Builder
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return "", fmt.Errorf("resolve concat input %s: %w", in, err)
		}
		// A single quote inside a path closes and reopens the quoting,
		// which is the concat demuxer's own escaping convention.
		b.WriteString("file '" + strings.ReplaceAll(abs, "'", `'\''`) + "'\n")
	}

	listFile := output + ".files.txt"
	if err := os.WriteFile(listFile, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("write concat list %s: %w", listFile, err)
	}
	return listFile, nil
}

// ExtractRange copies one sub-range out of the input in stream-copy mode.
func (p *FFmpegProcessor) ExtractRange(ctx context.Context, input, output string, start, end float64) error {
	args := []string{
		"-i", input,
		"-ss", FormatSeek(start),
		"-to", FormatSeek(end),
		"-c", "copy",
		"-y",
		output,
	}

	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("Executing ffmpeg extraction",
		logger.String("input", input),
		logger.String("output", output),
		logger.String("start", FormatSeek(start)),
		logger.String("end", FormatSeek(end)))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: ffmpeg extraction failed for %s [%s - %s]: %v\nFFmpeg Error: %s",
			ErrExternalTool, input, FormatSeek(start), FormatSeek(end), err, stderr.String())
	}
	return nil
}

// ffprobeOutput defines the structure for ffprobe JSON output.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration uses ffprobe to get the duration of an audio file in seconds.
func (p *FFmpegProcessor) Duration(ctx context.Context, input string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		input,
	}

	cmd := exec.CommandContext(ctx, p.ffprobePath(), args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("%w: ffprobe execution failed for %s: %v\nFFprobe Error: %s",
			ErrExternalTool, input, err, stderr.String())
	}

	var probeData ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probeData); err != nil {
		return 0, fmt.Errorf("%w: failed to unmarshal ffprobe output for %s: %v\nFFprobe Output: %s",
			ErrExternalTool, input, err, out.String())
	}

	if probeData.Format.Duration == "" {
		return 0, fmt.Errorf("%w: duration not found in ffprobe output for %s\nFFprobe Output: %s",
			ErrExternalTool, input, out.String())
	}

	duration, err := strconv.ParseFloat(probeData.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to parse duration %q for %s: %v",
			ErrExternalTool, probeData.Format.Duration, input, err)
	}

	return duration, nil
}
