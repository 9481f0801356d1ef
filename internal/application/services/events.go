package services

import (
	"time"

	"fileshare-api/internal/domain/shared_file"
)

type fileEvent struct {
	FileID      string `json:"file_id"`
	OwnerID     string `json:"owner_id,omitempty"`
	RecipientID string `json:"recipient_id,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	Retrievals  int64  `json:"retrieval_count,omitempty"`
}

func toFileEvent(f *shared_file.SharedFile) fileEvent {
	return fileEvent{
		FileID:      f.ID.String(),
		OwnerID:     f.OwnerID.String(),
		RecipientID: f.RecipientID.String(),
		FileName:    f.FileName,
		ExpiresAt:   f.ExpiresAt.UTC().Format(time.RFC3339),
		Retrievals:  f.RetrievalCount,
	}
}
