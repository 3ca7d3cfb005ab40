package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thechosenone98/MP3Journaling/core/audio"
	"github.com/thechosenone98/MP3Journaling/core/classify"
	"github.com/thechosenone98/MP3Journaling/logger"
	"github.com/thechosenone98/MP3Journaling/model"
)

// exportDayFormat names the per-day directory clips are filed under.
const exportDayFormat = "2006-01-02"

// ExportedClip describes one clip cut out of a merged recording. Object is
// the storage key a ClipArchiver should file the clip under, relative to
// the export root.
type ExportedClip struct {
	Pattern  classify.Pattern
	Sequence int
	Path     string
	Object   string
	Start    float64
	End      float64
}

// Exporter cuts resolved intervals out of a merged recording and files
// them under outRoot/<PATTERN>/<day>/.
type Exporter struct {
	proc     audio.Processor
	outRoot  string
	audioExt string
}

// NewExporter returns an Exporter writing clips under outRoot.
func NewExporter(proc audio.Processor, outRoot, audioExt string) *Exporter {
	return &Exporter{proc: proc, outRoot: outRoot, audioExt: audioExt}
}

// Export extracts every exportable interval into its own audio file.
// Confidential intervals are classified but never written out. Failures
// are collected rather than aborting the batch, so one bad cut does not
// lose the rest; the returned clips are the ones that were written.
//
// Sequence numbers restart at 1 for each pattern within each call and
// advance even when a cut fails, so rerunning a session yields the same
// file names.
func (e *Exporter) Export(ctx context.Context, merged *model.MergedRecording, intervals []classify.TimeInterval) ([]ExportedClip, error) {
	var (
		clips []ExportedClip
		errs  []error
		seq   = make(map[classify.Pattern]int)
	)

	for _, iv := range intervals {
		if !iv.Pattern.Exportable() {
			logger.Debug("Skipping non-exportable interval",
				logger.String("recording", merged.Name),
				logger.String("pattern", iv.Pattern.Name()),
				logger.Float64("start", iv.Start),
				logger.Float64("end", iv.End))
			continue
		}
		seq[iv.Pattern]++

		startAt := merged.CreatedAt.Add(time.Duration(iv.Start * float64(time.Second)))
		day := startAt.Format(exportDayFormat)
		name := fmt.Sprintf("%s_%s_%d%s", startAt.Format(mergedTimeFormat), iv.Pattern.Name(), seq[iv.Pattern], e.audioExt)

		dir := filepath.Join(e.outRoot, iv.Pattern.Name(), day)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errs = append(errs, fmt.Errorf("create export dir %s: %w", dir, err))
			continue
		}

		outPath := filepath.Join(dir, name)
		if err := e.proc.ExtractRange(ctx, merged.AudioPath, outPath, iv.Start, iv.End); err != nil {
			errs = append(errs, fmt.Errorf("extract %s #%d: %w", iv.Pattern.Name(), seq[iv.Pattern], err))
			continue
		}

		logger.Info("Exported annotation clip",
			logger.String("recording", merged.Name),
			logger.String("pattern", iv.Pattern.Name()),
			logger.Int("sequence", seq[iv.Pattern]),
			logger.String("path", outPath))

		clips = append(clips, ExportedClip{
			Pattern:  iv.Pattern,
			Sequence: seq[iv.Pattern],
			Path:     outPath,
			Object:   filepath.ToSlash(filepath.Join(iv.Pattern.Name(), day, name)),
			Start:    iv.Start,
			End:      iv.End,
		})
	}

	return clips, errors.Join(errs...)
}
