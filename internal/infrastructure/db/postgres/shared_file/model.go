package shared_file

import (
	"time"

	"github.com/google/uuid"
)

type (
	SharedFile struct {
		ID            uuid.UUID
		OwnerUUID     uuid.UUID
		RecipientUUID uuid.UUID

		FileName    string
		ContentType string
		SizeBytes   int64

		Bucket         string
		StorageKey     string
		CiphertextSize int64
		WrappedKey     []byte

		AccessPasswordHash *string

		Status         string
		RetrievalCount int64

		CreatedAt   time.Time
		ExpiresAt   time.Time
		RetrievedAt *time.Time
	}
	SharedFiles []*SharedFile
)
