package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thechosenone98/MP3Journaling/logger"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process every recording group in the recordings directory once",
	Long: `Scan the recordings directory, reassemble each split session, decode
its track-mark annotations and export the annotated spans as clips.
Groups that fail are reported and left untouched for a rerun.`,
	Run: runProcess,
}

// runProcess is the one-shot pipeline run, shared between the bare root
// invocation and the process subcommand.
func runProcess(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	applyPipelineFlags(cmd, cfg)
	initLogging(cfg)
	defer logger.Sync()

	pipeline, cleanup, err := buildPipeline(cfg, nil)
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

	summary, err := pipeline.Run(ctx, cfg.RecordingsDir)
	if err != nil {
		log.Fatalf("Processing failed: %v", err)
	}

	fmt.Printf("Processed %d recording group(s): %d merged, %d clip(s) exported, %d failure(s)\n",
		summary.Groups, summary.Merged, summary.Clips, summary.Failures)
	if summary.Failures > 0 {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(processCmd)
	addPipelineFlags(processCmd)

	processCmd.Example = `  # Process the configured recordings directory
  mp3journal process

  # Process a card dump somewhere else, keeping the originals
  mp3journal process -d /mnt/recorder -o ~/journal -k

  # Looser burst timing for a recorder with a stiff button
  mp3journal process -g 45`
}
