package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"unihub/internal/config"

	"github.com/google/uuid"
)

var ErrFileNotFound = errors.New("storage: file not found")

// Storage holds the minutes attachments of completed meetings. Keys are
// opaque to callers; only the key stored on the meeting record refers back to
// a file.
type Storage interface {
	// Save stores a minutes file under the meeting and returns the storage key.
	Save(ctx context.Context, meetingID uuid.UUID, filename string, content io.Reader, contentType string) (string, error)

	// Open streams a stored file back. The caller closes the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Remove deletes a stored file. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// SignedURL returns a download URL valid for the given duration.
	SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// New picks the backend from the configuration.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocalStorage(cfg.LocalPath)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("storage: the s3 backend requires a bucket")
		}
		return NewS3Storage(cfg.S3Bucket, cfg.S3Region)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}

// objectKey scopes a file under its meeting: meeting_id/uuid_filename.
func objectKey(meetingID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/%s_%s", meetingID, uuid.New(), sanitizeFilename(filename))
}

func sanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", "..", "_", ":", "_",
		"*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	return replacer.Replace(filename)
}
