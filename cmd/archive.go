package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/thechosenone98/MP3Journaling/storage"
)

var archivePrefix string

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "List clips uploaded to the MinIO archive",
	Long: `Connect to the configured MinIO archive and list the clips stored
there, oldest first. Use --prefix to narrow the listing to one pattern
or one day, e.g. SHORT_NOTE/ or CONVERSATION/2024-03-05/.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cfg.MinioEndpoint == "" {
			log.Fatal("No archive configured (set MINIO_ENDPOINT).")
		}

		archiver, err := storage.NewArchiver(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to archive: %v", err)
		}

		clips, err := archiver.ListClips(context.Background(), archivePrefix)
		if err != nil {
			log.Fatalf("Failed to list archive: %v", err)
		}
		if len(clips) == 0 {
			fmt.Println("No archived clips found.")
			return
		}

		var totalSize int64
		for _, clip := range clips {
			totalSize += clip.Size
			fmt.Printf("%s  %8s  %s\n",
				clip.LastModified.Format("2006-01-02 15:04"), formatSize(clip.Size), clip.Key)
		}
		fmt.Printf("%d clip(s), %s total\n", len(clips), formatSize(totalSize))
	},
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.Flags().StringVarP(&archivePrefix, "prefix", "p", "", "only list objects under this prefix")

	archiveCmd.Example = `  # Everything in the bucket
  mp3journal archive

  # Just the short notes
  mp3journal archive -p SHORT_NOTE/`
}
