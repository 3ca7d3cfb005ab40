package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thechosenone98/MP3Journaling/core/watch"
	"github.com/thechosenone98/MP3Journaling/logger"
	"github.com/thechosenone98/MP3Journaling/metrics"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the recordings directory and process new sessions automatically",
	Long: `Run until interrupted, processing whatever is already in the recordings
directory and then every batch of recorder files that lands there, once
the copy has settled.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		applyPipelineFlags(cmd, cfg)
		initLogging(cfg)
		defer logger.Sync()

		var mets *metrics.Metrics
		if cfg.MetricsAddr != "" {
			mets = metrics.NewMetrics()
			go func() {
				if err := metrics.Serve(cfg.MetricsAddr); err != nil {
					logger.Error("Metrics server stopped", logger.ErrorField(err))
				}
			}()
		}

		pipeline, cleanup, err := buildPipeline(cfg, mets)
		if err != nil {
			log.Fatalf("Failed to set up pipeline: %v", err)
		}
		defer cleanup()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			logger.Info("Received shutdown signal", logger.String("signal", sig.String()))
			cancel()
		}()

		// Catch up on whatever is already there before waiting for events.
		if _, err := pipeline.Run(ctx, cfg.RecordingsDir); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Initial processing run failed: %v", err)
		}

		w := watch.NewWatcher(cfg.RecordingsDir, cfg.WatchSettle,
			[]string{cfg.AudioExt, cfg.MarkerExt},
			func(ctx context.Context) {
				if _, err := pipeline.Run(ctx, cfg.RecordingsDir); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Processing run failed", logger.ErrorField(err))
				}
			})

		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Watcher failed: %v", err)
		}
		log.Println("Watch stopped.")
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addPipelineFlags(watchCmd)

	watchCmd.Example = `  # Watch the configured recordings directory
  mp3journal watch

  # Watch a mount point where the recorder gets plugged in
  mp3journal watch -d /media/recorder`
}
