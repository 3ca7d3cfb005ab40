package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/thechosenone98/MP3Journaling/cache"
	"github.com/thechosenone98/MP3Journaling/config"
	"github.com/thechosenone98/MP3Journaling/core/audio"
	"github.com/thechosenone98/MP3Journaling/core/classify"
	"github.com/thechosenone98/MP3Journaling/core/session"
	"github.com/thechosenone98/MP3Journaling/db"
	"github.com/thechosenone98/MP3Journaling/logger"
	"github.com/thechosenone98/MP3Journaling/metrics"
	"github.com/thechosenone98/MP3Journaling/repository"
	"github.com/thechosenone98/MP3Journaling/storage"
)

var rootCmd = &cobra.Command{
	Use:   "mp3journal",
	Short: "MP3Journaling turns recorder track marks into a filed audio journal.",
	Long: `MP3Journaling reassembles voice recorder output into whole sessions,
decodes track-mark button presses into annotation patterns and exports
the annotated audio spans as individual journal clips.

Run without a subcommand it processes the recordings directory once.`,
	Run: runProcess,
}

func init() {
	addPipelineFlags(rootCmd)
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Flags shared by the process and watch commands. They override the
// environment and device profile.
var (
	flagDir     string
	flagOut     string
	flagGap     float64
	flagWorkers int
	flagKeep    bool
)

func addPipelineFlags(c *cobra.Command) {
	c.Flags().StringVarP(&flagDir, "dir", "d", "", "recordings directory to process")
	c.Flags().StringVarP(&flagOut, "out", "o", "", "export root for clipped annotations")
	c.Flags().Float64VarP(&flagGap, "gap", "g", 0, "max accumulated seconds between presses of one burst")
	c.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "recording groups processed in parallel")
	c.Flags().BoolVarP(&flagKeep, "keep", "k", false, "keep original files after a successful export")
}

func applyPipelineFlags(c *cobra.Command, cfg *config.Config) {
	if c.Flags().Changed("dir") {
		cfg.RecordingsDir = flagDir
	}
	if c.Flags().Changed("out") {
		cfg.ExportDir = flagOut
	}
	if c.Flags().Changed("gap") {
		cfg.GapSeconds = flagGap
	}
	if c.Flags().Changed("workers") {
		cfg.Workers = flagWorkers
	}
	if c.Flags().Changed("keep") {
		cfg.KeepOriginals = flagKeep
	}
}

// loadConfig reads the environment configuration and applies the device
// profile on top, if one is configured.
func loadConfig() *config.Config {
	cfg := config.Load()
	if cfg.ProfilePath != "" {
		profile, err := config.LoadProfile(cfg.ProfilePath)
		if err != nil {
			log.Fatalf("Failed to load device profile: %v", err)
		}
		cfg.ApplyProfile(profile)
		log.Printf("Applied device profile %q", profile.Name)
	}
	return cfg
}

func initLogging(cfg *config.Config) {
	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
}

// buildPipeline wires the processing pipeline from the configuration. The
// returned cleanup closes whatever was opened along the way.
func buildPipeline(cfg *config.Config, mets *metrics.Metrics) (*session.Pipeline, func(), error) {
	proc := audio.NewFFmpegProcessor(cfg.FFmpegPath)
	durations := cache.NewDurationCache(proc)

	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	var repo repository.SessionRepository
	if cfg.CatalogPath != "" {
		if err := db.ConnectDB(cfg.CatalogPath); err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = db.CloseDB() })
		if err := db.InitDB(); err != nil {
			cleanup()
			return nil, nil, err
		}
		repo = repository.NewSQLiteSessionRepository()
	}

	var archiver session.ClipArchiver
	if cfg.MinioEndpoint != "" {
		arch, err := storage.NewArchiver(cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		archiver = arch
	}

	lookbacks := map[classify.Pattern]float64{
		classify.ShortNote:   cfg.ShortNoteLookback,
		classify.LongNote:    cfg.LongNoteLookback,
		classify.ProjectIdea: cfg.ProjectIdeaLookback,
	}

	p := session.NewPipeline(session.PipelineConfig{
		Scanner:       session.NewScanner(session.PrefixMatcher{}, cfg.AudioExt, cfg.MarkerExt),
		Aligner:       session.NewAligner(durations),
		Merger:        session.NewMerger(proc, durations, cfg.AudioExt, cfg.MarkerExt),
		Exporter:      session.NewExporter(proc, cfg.ExportDir, cfg.AudioExt),
		Classifier:    classify.NewClassifier(cfg.GapSeconds),
		Resolver:      classify.NewResolver(lookbacks),
		Workers:       cfg.Workers,
		KeepOriginals: cfg.KeepOriginals,
		Repository:    repo,
		Archiver:      archiver,
		Metrics:       mets,
	})
	return p, cleanup, nil
}
