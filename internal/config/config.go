package config

import (
	"os"
	"time"
)

// Pipeline constants. These are fixed values consumed as plain numbers;
// nothing reconfigures them at runtime.
const (
	// MaxImageWidth and MaxImageHeight bound the pixel envelope of every
	// re-encoded variant. Images are never upscaled toward this envelope.
	MaxImageWidth  = 1920
	MaxImageHeight = 1920

	// ImageQuality is used for both the WebP and JPEG encodes (0-100).
	ImageQuality = 85

	// BatchSize is the number of files processed concurrently per batch.
	BatchSize = 5

	// MinBatchForPool is the smallest batch that justifies spinning up the
	// parallel worker pool; smaller batches run inline.
	MinBatchForPool = 3

	// LagThresholdHours marks a photo as long-lag when capture-to-upload
	// time exceeds this many hours.
	LagThresholdHours = 24

	// MaxDimension guards the decoder against absurd source images.
	MaxDimension = 8000

	// MaxSourceBytes is the largest source file the pipeline will decode.
	MaxSourceBytes = 64 << 20

	// MaxSnapshotBytes is the record store quota. A snapshot that marshals
	// larger than this is refused rather than written.
	MaxSnapshotBytes = 5 << 20

	// AutoSaveInterval is how often the autosaver wakes up.
	AutoSaveInterval = 60 * time.Second
)

// ValidImageTypes are the MIME types accepted for ingestion.
var ValidImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ValidImageExtensions is the filename fallback when no MIME type is declared.
var ValidImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

type Config struct {
	DatabasePath string
	DataDir      string
}

func Load() *Config {
	return &Config{
		DatabasePath: getEnv("DATABASE_PATH", "./data/fieldshot.db"),
		DataDir:      getEnv("DATA_DIR", "./data"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
