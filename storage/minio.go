package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/thechosenone98/MP3Journaling/config"
	"github.com/thechosenone98/MP3Journaling/logger"
)

// Archiver uploads exported clips to a MinIO bucket so journal entries
// survive the recorder's SD card.
type Archiver struct {
	client *minio.Client
	bucket string
}

// NewArchiver connects to MinIO and makes sure the archive bucket exists.
func NewArchiver(cfg *config.Config) (*Archiver, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("Created archive bucket", logger.String("bucket", cfg.MinioBucket))
	}

	logger.Info("Connected to clip archive",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket))
	return &Archiver{client: client, bucket: cfg.MinioBucket}, nil
}

// ArchiveClip uploads one exported clip under objectName.
func (a *Archiver) ArchiveClip(ctx context.Context, localPath, objectName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open clip %s: %w", localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat clip %s: %w", localPath, err)
	}

	opts := minio.PutObjectOptions{ContentType: contentTypeFor(localPath)}
	if _, err := a.client.PutObject(ctx, a.bucket, objectName, file, info.Size(), opts); err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	logger.Debug("Archived clip",
		logger.String("object", objectName),
		logger.Int64("bytes", info.Size()))
	return nil
}

// ClipObject describes one archived clip in the bucket.
type ClipObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListClips returns the archived clips under prefix, oldest first. An
// empty prefix lists the whole bucket.
func (a *Archiver) ListClips(ctx context.Context, prefix string) ([]ClipObject, error) {
	var clips []ClipObject
	objectCh := a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list archive objects: %w", object.Err)
		}
		clips = append(clips, ClipObject{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}

	sort.Slice(clips, func(i, j int) bool {
		return clips[i].LastModified.Before(clips[j].LastModified)
	})
	return clips, nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".m4a":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}
