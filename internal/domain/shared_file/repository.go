package shared_file

import (
	"context"
	"time"

	"fileshare-api/internal/domain/user"
)

type Repository interface {
	CreateSharedFile(ctx context.Context, req *SharedFile) (*SharedFile, error)
	FetchSharedFile(ctx context.Context, id ID) (*SharedFile, error)
	FetchRecipientFiles(ctx context.Context, recipientID user.UUID, now time.Time, page int) (SharedFiles, error)
	FetchOwnerFiles(ctx context.Context, ownerID user.UUID, page int) (SharedFiles, error)
	// LockForRead holds a shared row lock for the duration of fn. Returns
	// ErrNotFound when the row does not exist.
	LockForRead(ctx context.Context, id ID, fn func(ctx context.Context, f *SharedFile) error) error
	// MarkRetrieved reports false when the record was no longer eligible.
	MarkRetrieved(ctx context.Context, id ID, now time.Time, singleRetrieval bool) (bool, error)
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteExpired(ctx context.Context) ([]Purged, error)
	DeleteUserFiles(ctx context.Context, userID user.UUID) ([]Purged, error)
}
