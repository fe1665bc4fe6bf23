package config

import (
	"cargofleet/internal/blob"
)

// Prefix namespaces every environment variable.
const Prefix = "CARGOFLEET_"

// Config holds runtime settings. CLI flags override individual fields after
// Load.
type Config struct {
	LogLevel  string
	LogFormat string

	BlobDriver      string
	BlobFSRoot      string
	BlobS3Bucket    string
	BlobS3Region    string
	BlobS3Endpoint  string
	BlobS3PathStyle bool
	BlobS3PageSize  int

	HazardJournalDriver string
	HazardJournalDSN    string

	Metrics bool
}

// Load constructs a Config from environment variables.
func Load() Config {
	return Config{
		LogLevel:            GetString(Prefix+"LOG_LEVEL", "info"),
		LogFormat:           GetString(Prefix+"LOG_FORMAT", FormatText),
		BlobDriver:          GetString(Prefix+"BLOB_DRIVER", string(blob.DriverMemory)),
		BlobFSRoot:          GetString(Prefix+"BLOB_FS_ROOT", "./exports"),
		BlobS3Bucket:        GetString(Prefix+"BLOB_S3_BUCKET", ""),
		BlobS3Region:        GetString(Prefix+"BLOB_S3_REGION", "us-east-1"),
		BlobS3Endpoint:      GetString(Prefix+"BLOB_S3_ENDPOINT", ""),
		BlobS3PathStyle:     GetBool(Prefix+"BLOB_S3_PATH_STYLE", false),
		BlobS3PageSize:      GetInt(Prefix+"BLOB_S3_PAGE_SIZE", 0),
		HazardJournalDriver: GetString(Prefix+"HAZARD_JOURNAL_DRIVER", ""),
		HazardJournalDSN:    GetString(Prefix+"HAZARD_JOURNAL_DSN", ""),
		Metrics:             GetBool(Prefix+"METRICS", false),
	}
}

// Blob maps the blob settings onto blob.Config. Credentials come from the
// default AWS chain.
func (c Config) Blob() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.BlobDriver),
		FSRoot: c.BlobFSRoot,
		S3: blob.S3Config{
			Bucket:       c.BlobS3Bucket,
			Region:       c.BlobS3Region,
			Endpoint:     c.BlobS3Endpoint,
			PathStyle:    c.BlobS3PathStyle,
			ListPageSize: int32(c.BlobS3PageSize), //nolint:gosec // small page sizes only
		},
	}
}

// JournalEnabled reports whether hazards should be journaled.
func (c Config) JournalEnabled() bool { return c.HazardJournalDriver != "" }
