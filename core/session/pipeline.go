package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thechosenone98/MP3Journaling/core/classify"
	"github.com/thechosenone98/MP3Journaling/logger"
	"github.com/thechosenone98/MP3Journaling/metrics"
	"github.com/thechosenone98/MP3Journaling/model"
	"github.com/thechosenone98/MP3Journaling/repository"
)

// ClipArchiver uploads exported clips to off-machine storage.
type ClipArchiver interface {
	ArchiveClip(ctx context.Context, localPath, objectName string) error
}

// PipelineConfig carries the pipeline's collaborators. Repository,
// Archiver and Metrics are optional; nil disables them.
type PipelineConfig struct {
	Scanner    *Scanner
	Aligner    *Aligner
	Merger     *Merger
	Exporter   *Exporter
	Classifier *classify.Classifier
	Resolver   *classify.Resolver

	Workers       int
	KeepOriginals bool

	Repository repository.SessionRepository
	Archiver   ClipArchiver
	Metrics    *metrics.Metrics
}

// Pipeline runs recording groups through the five processing phases:
// align, merge, classify, export, cleanup. Groups are independent, so
// they may run on parallel workers; the phases of one group always run
// in order.
type Pipeline struct {
	scanner    *Scanner
	aligner    *Aligner
	merger     *Merger
	exporter   *Exporter
	classifier *classify.Classifier
	resolver   *classify.Resolver

	workerCount   int
	keepOriginals bool

	repo     repository.SessionRepository
	archiver ClipArchiver
	metrics  *metrics.Metrics
}

// NewPipeline builds a pipeline from its parts.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		scanner:       cfg.Scanner,
		aligner:       cfg.Aligner,
		merger:        cfg.Merger,
		exporter:      cfg.Exporter,
		classifier:    cfg.Classifier,
		resolver:      cfg.Resolver,
		workerCount:   workers,
		keepOriginals: cfg.KeepOriginals,
		repo:          cfg.Repository,
		archiver:      cfg.Archiver,
		metrics:       cfg.Metrics,
	}
}

// Summary reports what one run did.
type Summary struct {
	Groups   int
	Merged   int
	Clips    int
	Failures int
}

// Run scans dir and processes every recording group found there. Group
// failures are logged and counted, not propagated: one corrupt group must
// not hold the rest of the directory hostage. The returned error covers
// only the scan itself and context cancellation.
func (p *Pipeline) Run(ctx context.Context, dir string) (*Summary, error) {
	runID := uuid.NewString()
	started := time.Now()

	groups, err := p.scanner.Scan(dir)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Groups: len(groups)}
	logger.Info("Starting processing run",
		logger.String("runId", runID),
		logger.String("dir", dir),
		logger.Int("groups", len(groups)),
		logger.Int("workers", p.workerCount))

	if len(groups) == 0 {
		return summary, nil
	}

	jobs := make(chan model.RecordingGroup, len(groups))
	for _, g := range groups {
		jobs <- g
	}
	close(jobs)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	workers := p.workerCount
	if workers > len(groups) {
		workers = len(groups)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range jobs {
				if ctx.Err() != nil {
					return
				}
				clips, err := p.processGroup(ctx, runID, &group)

				mu.Lock()
				if err != nil {
					summary.Failures++
				} else {
					summary.Merged++
					summary.Clips += clips
				}
				mu.Unlock()

				if err != nil {
					logger.Error("Recording group failed",
						logger.String("runId", runID),
						logger.String("group", group.Prefix),
						logger.ErrorField(err))
					p.metrics.RecordGroupFailed()
				} else {
					p.metrics.RecordGroupProcessed()
				}
			}
		}()
	}
	wg.Wait()

	logger.Info("Processing run finished",
		logger.String("runId", runID),
		logger.Int("groups", summary.Groups),
		logger.Int("merged", summary.Merged),
		logger.Int("clips", summary.Clips),
		logger.Int("failures", summary.Failures),
		logger.Duration("elapsed", time.Since(started)))

	if ctx.Err() != nil {
		return summary, ctx.Err()
	}
	return summary, nil
}

// processGroup runs one group through all five phases. Originals are
// removed only after everything else succeeded, so any failure leaves the
// directory rerunnable.
func (p *Pipeline) processGroup(ctx context.Context, runID string, group *model.RecordingGroup) (int, error) {
	logger.Info("Processing recording group",
		logger.String("runId", runID),
		logger.String("group", group.Prefix),
		logger.Int("segments", len(group.Audio)),
		logger.Int("markerFiles", len(group.Markers)))

	mergeStart := time.Now()
	aligned, err := p.aligner.Align(ctx, group)
	if err != nil {
		return 0, err
	}

	merged, err := p.merger.Merge(ctx, group, aligned)
	if err != nil {
		return 0, err
	}
	p.metrics.ObserveMergeDuration(time.Since(mergeStart))
	p.metrics.RecordSegmentsMerged(len(group.Audio))

	var (
		intervals []classify.TimeInterval
		clips     []ExportedClip
	)
	if !merged.HasAnnotations() {
		logger.Info("Session has no annotations",
			logger.String("group", group.Prefix),
			logger.String("recording", merged.Name))
	} else {
		windows, err := p.classifier.Classify(merged.Marks)
		if err != nil {
			return 0, fmt.Errorf("classify group %s: %w", group.Prefix, err)
		}
		intervals, err = p.resolver.Resolve(windows, merged.Marks)
		if err != nil {
			return 0, fmt.Errorf("resolve group %s: %w", group.Prefix, err)
		}
		for _, iv := range intervals {
			p.metrics.RecordIntervalResolved(iv.Pattern.Name())
		}

		clips, err = p.exporter.Export(ctx, merged, intervals)
		for _, c := range clips {
			p.metrics.RecordClipExported(c.Pattern.Name())
		}
		if err != nil {
			return len(clips), fmt.Errorf("export group %s: %w", group.Prefix, err)
		}
	}

	p.record(group, merged, intervals, clips)
	p.archive(ctx, clips)

	if !p.keepOriginals {
		p.merger.Cleanup(group)
	}
	return len(clips), nil
}

// record writes the session into the catalog. Best-effort: the audio work
// is already done, so a catalog hiccup is logged rather than failing the
// group.
func (p *Pipeline) record(group *model.RecordingGroup, merged *model.MergedRecording, intervals []classify.TimeInterval, clips []ExportedClip) {
	if p.repo == nil {
		return
	}

	rec := &model.SessionRecord{
		Name:         merged.Name,
		SourcePrefix: group.Prefix,
		SegmentCount: len(group.Audio),
		MarkerCount:  len(group.Markers),
		Duration:     merged.Duration,
		CreatedAt:    merged.CreatedAt,
		ProcessedAt:  time.Now(),
	}
	for _, iv := range intervals {
		rec.Intervals = append(rec.Intervals, model.IntervalRecord{
			Pattern:  iv.Pattern.Name(),
			StartSec: iv.Start,
			EndSec:   iv.End,
		})
	}
	for _, c := range clips {
		rec.Exports = append(rec.Exports, model.ExportRecord{
			Pattern:  c.Pattern.Name(),
			Sequence: c.Sequence,
			Path:     c.Path,
			StartSec: c.Start,
			EndSec:   c.End,
		})
	}

	if _, err := p.repo.RecordSession(rec); err != nil {
		logger.Error("Failed to catalog session",
			logger.String("session", merged.Name),
			logger.ErrorField(err))
	}
}

// archive uploads exported clips. Best-effort for the same reason as the
// catalog.
func (p *Pipeline) archive(ctx context.Context, clips []ExportedClip) {
	if p.archiver == nil {
		return
	}
	for _, c := range clips {
		if err := p.archiver.ArchiveClip(ctx, c.Path, c.Object); err != nil {
			logger.Error("Failed to archive clip",
				logger.String("path", c.Path),
				logger.String("object", c.Object),
				logger.ErrorField(err))
		}
	}
}
