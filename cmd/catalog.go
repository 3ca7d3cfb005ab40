package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/thechosenone98/MP3Journaling/core/audio"
	"github.com/thechosenone98/MP3Journaling/db"
	"github.com/thechosenone98/MP3Journaling/model"
	"github.com/thechosenone98/MP3Journaling/repository"
)

var catalogLimit int

var catalogCmd = &cobra.Command{
	Use:   "catalog [session-name]",
	Short: "List processed sessions from the catalog",
	Long: `Without arguments, list the most recently processed sessions. With a
session name, show that session's annotation intervals and exported
clips.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cfg.CatalogPath == "" {
			log.Fatal("No catalog configured (set CATALOG_PATH).")
		}
		if err := db.ConnectDB(cfg.CatalogPath); err != nil {
			log.Fatalf("Failed to open catalog: %v", err)
		}
		defer db.CloseDB()
		if err := db.InitDB(); err != nil {
			log.Fatalf("Failed to initialize catalog: %v", err)
		}

		repo := repository.NewSQLiteSessionRepository()

		if len(args) == 1 {
			showSession(repo, args[0])
			return
		}

		recs, err := repo.RecentSessions(catalogLimit)
		if err != nil {
			log.Fatalf("Failed to list sessions: %v", err)
		}
		if len(recs) == 0 {
			fmt.Println("No sessions recorded yet.")
			return
		}
		for _, rec := range recs {
			fmt.Printf("%s  %-32s  segments=%d  duration=%s  clips=%d\n",
				rec.ProcessedAt.Format("2006-01-02 15:04"),
				rec.Name, rec.SegmentCount, formatSessionDuration(rec.Duration), len(rec.Exports))
		}
	},
}

func showSession(repo repository.SessionRepository, name string) {
	rec, err := repo.SessionByName(name)
	if err != nil {
		log.Fatalf("Failed to load session: %v", err)
	}
	if rec == nil {
		log.Fatalf("No session named %q in the catalog.", name)
	}

	fmt.Printf("%s\n", rec.Name)
	fmt.Printf("  source: %s (%d segment(s), %d marker file(s))\n",
		rec.SourcePrefix, rec.SegmentCount, rec.MarkerCount)
	fmt.Printf("  duration: %s, recorded %s, processed %s\n",
		formatSessionDuration(rec.Duration),
		rec.CreatedAt.Format("2006-01-02 15:04:05"),
		rec.ProcessedAt.Format("2006-01-02 15:04:05"))

	if len(rec.Intervals) == 0 {
		fmt.Println("  no annotations")
		return
	}
	fmt.Println("  intervals:")
	for _, iv := range rec.Intervals {
		fmt.Printf("    %-14s [%s - %s]%s\n",
			iv.Pattern, audio.FormatSeek(iv.StartSec), audio.FormatSeek(iv.EndSec),
			exportSuffix(rec.Exports, iv))
	}
}

// exportSuffix finds the clip exported for an interval, if any.
func exportSuffix(exports []model.ExportRecord, iv model.IntervalRecord) string {
	for _, ex := range exports {
		if ex.Pattern == iv.Pattern && ex.StartSec == iv.StartSec && ex.EndSec == iv.EndSec {
			return "  -> " + ex.Path
		}
	}
	return ""
}

func formatSessionDuration(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().IntVarP(&catalogLimit, "limit", "n", 10, "how many sessions to list")

	catalogCmd.Example = `  # The ten most recent sessions
  mp3journal catalog

  # Everything from the last card dump
  mp3journal catalog -n 50

  # One session in detail
  mp3journal catalog 2024-03-05@09h00m00s_merged`
}
