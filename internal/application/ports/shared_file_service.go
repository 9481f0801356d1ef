package ports

import (
	"context"
	"mime/multipart"

	"fileshare-api/internal/domain/shared_file"
	"fileshare-api/internal/domain/user"
)

type (
	UploadRequest struct {
		OwnerID        user.UUID
		RecipientEmail string
		Password       string
		ExpirationDate string
		File           *multipart.FileHeader
	}
	RetrieveRequest struct {
		CallerID    user.UUID
		FileID      shared_file.ID
		Password    string
		KeyPassword string
	}
	Retrieved struct {
		FileName    string
		ContentType string
		Content     []byte
	}
)

type SharedFileService interface {
	Upload(ctx context.Context, req UploadRequest) (*shared_file.SharedFile, error)
	Retrieve(ctx context.Context, req RetrieveRequest) (*Retrieved, error)
	FindReceivedFiles(ctx context.Context, recipientID user.UUID, page int) (shared_file.SharedFiles, error)
	FindSentFiles(ctx context.Context, ownerID user.UUID, page int) (shared_file.SharedFiles, error)
}
