package shared_file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		ID             uuid.UUID  `json:"id"`
		OwnerID        uuid.UUID  `json:"owner_id"`
		RecipientID    uuid.UUID  `json:"recipient_id"`
		FileName       string     `json:"file_name"`
		ContentType    string     `json:"content_type"`
		SizeBytes      int64      `json:"size_bytes"`
		Status         string     `json:"status"`
		PasswordGated  bool       `json:"password_protected"`
		RetrievalCount int64      `json:"retrieval_count"`
		CreatedAt      time.Time  `json:"created_at"`
		ExpiresAt      time.Time  `json:"expires_at"`
		RetrievedAt    *time.Time `json:"retrieved_at,omitempty"`
	}
	Files        []File
	ResponseData struct {
		Data Files `json:"data"`
	}

	DownloadRequest struct {
		Password    string `json:"password"`
		KeyPassword string `json:"key_password"`
	}
)
