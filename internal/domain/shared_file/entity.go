package shared_file

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"fileshare-api/internal/domain/user"
)

var ErrNotFound = errors.New("shared file not found")

type (
	ID         = uuid.UUID
	SharedFile struct {
		ID          ID
		OwnerID     user.UUID
		RecipientID user.UUID

		FileName    string
		ContentType string
		SizeBytes   int64

		Bucket         string
		StorageKey     string
		CiphertextSize int64
		WrappedKey     []byte

		AccessPasswordHash *string

		Status         Status
		RetrievalCount int64

		CreatedAt   time.Time
		ExpiresAt   time.Time
		RetrievedAt *time.Time
	}
	SharedFiles []*SharedFile

	// Purged identifies a physically deleted record and the object it referenced.
	Purged struct {
		ID         ID
		Bucket     string
		StorageKey string
	}
)

// ExpiredAt reports whether the record is unavailable at now, whatever the
// janitor has or has not recorded in Status.
func (f *SharedFile) ExpiredAt(now time.Time) bool {
	if f.Status == StatusExpired || f.Status == StatusDeleted {
		return true
	}
	return !now.Before(f.ExpiresAt)
}

func (f *SharedFile) HasPasswordGate() bool {
	return f.AccessPasswordHash != nil && *f.AccessPasswordHash != ""
}
