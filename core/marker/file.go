package marker

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/thechosenone98/MP3Journaling/model"
)

// ReadFile parses a whole marker file. The returned sequence is never nil:
// an empty file yields an empty sequence, which still counts as "annotated"
// for the recording it belongs to. A UTF-8 BOM and one trailing blank line
// are tolerated; both show up in real device output.
//
// Offsets must not decrease from line to line; the burst classifier walks
// marks in recording order and an out-of-order file means the recorder's
// output was corrupted, so ReadFile rejects it with ErrFormat.
func ReadFile(path string) (model.MarkerSequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open marker file %s: %w", path, err)
	}
	defer f.Close()

	marks := make(model.MarkerSequence, 0, 16)
	prev := -1.0
	blankAt := 0
	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if lineNo == 1 {
			// Some firmware revisions write a UTF-8 BOM.
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if blankAt > 0 {
			return nil, fmt.Errorf("%s line %d: %w: blank line before end of file", path, blankAt, ErrFormat)
		}
		if line == "" {
			// The device leaves a single blank line at the end of some files.
			blankAt = lineNo
			continue
		}
		offset, err := ParseMark(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		if offset < prev {
			return nil, fmt.Errorf("%s line %d: %w: offset %s goes backwards", path, lineNo, ErrFormat, line)
		}
		prev = offset
		marks = append(marks, model.TrackMark{Offset: offset})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read marker file %s: %w", path, err)
	}
	return marks, nil
}

// WriteFile writes a marker sequence in the device's own format, one mark
// per line, so merged output stays readable by anything that reads the
// recorder's originals.
func WriteFile(path string, marks model.MarkerSequence) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create marker file %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, mark := range marks {
		if _, err := w.WriteString(FormatMark(mark.Offset) + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("write marker file %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush marker file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close marker file %s: %w", path, err)
	}
	return nil
}
