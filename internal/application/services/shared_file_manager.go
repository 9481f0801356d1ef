package services

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fileshare-api/internal/application/apperr"
	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/shared_file"
	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/metrics"
)

// SharedFileManager owns the record lifecycle and the ciphertext objects
// the records point to.
type SharedFileManager struct {
	repo            domain.Repository
	blobs           ports.BlobStore
	singleRetrieval bool
	logger          *zap.Logger
	mCounter        *prometheus.CounterVec
}

func NewSharedFileManager(
	repo domain.Repository,
	blobs ports.BlobStore,
	singleRetrieval bool,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) *SharedFileManager {
	return &SharedFileManager{
		repo:            repo,
		blobs:           blobs,
		singleRetrieval: singleRetrieval,
		logger:          logger,
		mCounter:        mCounter,
	}
}

func (m *SharedFileManager) SingleRetrieval() bool { return m.singleRetrieval }
func (m *SharedFileManager) Bucket() string        { return m.blobs.GetBucket() }

// Create stores ciphertext under f.StorageKey and then inserts the record.
// A failed insert removes the object again. Never retried.
func (m *SharedFileManager) Create(ctx context.Context, f *domain.SharedFile, ciphertext []byte) (*domain.SharedFile, error) {
	if len(ciphertext) == 0 || len(f.WrappedKey) == 0 {
		return nil, apperr.Storage("create record", errors.New("missing ciphertext or wrapped key"))
	}

	f.Bucket = m.blobs.GetBucket()
	f.CiphertextSize = int64(len(ciphertext))
	if err := m.blobs.PutObject(ctx, f.StorageKey, ciphertext, "application/octet-stream"); err != nil {
		return nil, apperr.Storage("put object", err)
	}

	out, err := m.repo.CreateSharedFile(ctx, f)
	if err != nil {
		if derr := m.blobs.DeleteObject(context.WithoutCancel(ctx), f.StorageKey); derr != nil {
			m.logger.Error("orphaned object after failed insert",
				zap.String("storage_key", f.StorageKey), zap.Error(derr))
			m.mCounter.WithLabelValues(metrics.BlobRemovalFailed).Inc()
		}
		return nil, apperr.Storage("insert record", err)
	}

	return out, nil
}

// Load fetches a record for authorization. Absent records are FileNotFound.
func (m *SharedFileManager) Load(ctx context.Context, id domain.ID) (*domain.SharedFile, error) {
	f, err := readOnce(ctx, func(ctx context.Context) (*domain.SharedFile, error) {
		f, err := m.repo.FetchSharedFile(ctx, id)
		if err != nil {
			return nil, apperr.Storage("fetch record", err)
		}
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, apperr.ErrFileNotFound
	}

	return f, nil
}

// LoadCiphertext reads the object while holding a shared row lock, so the
// janitor cannot delete the record mid-read. The lock is released on return.
func (m *SharedFileManager) LoadCiphertext(ctx context.Context, id domain.ID, now time.Time) ([]byte, *domain.SharedFile, error) {
	var (
		ciphertext []byte
		locked     *domain.SharedFile
	)
	err := m.repo.LockForRead(ctx, id, func(ctx context.Context, f *domain.SharedFile) error {
		if f.ExpiredAt(now) {
			return apperr.ErrExpired
		}
		b, err := m.blobs.GetObject(ctx, f.StorageKey)
		if err != nil {
			return apperr.Storage("get object", err)
		}
		if int64(len(b)) != f.CiphertextSize {
			return apperr.Storage("get object", errors.New("ciphertext size mismatch"))
		}
		ciphertext, locked = b, f
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, apperr.ErrFileNotFound
		}
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, nil, err
		}
		return nil, nil, apperr.Storage("lock record", err)
	}

	return ciphertext, locked, nil
}

func (m *SharedFileManager) MarkRetrieved(ctx context.Context, id domain.ID, now time.Time) error {
	ok, err := m.repo.MarkRetrieved(ctx, id, now, m.singleRetrieval)
	if err != nil {
		return apperr.Storage("mark retrieved", err)
	}
	if !ok {
		if m.singleRetrieval {
			return apperr.ErrAlreadyConsumed
		}
		return apperr.ErrExpired
	}

	return nil
}

// DeleteExpired marks every due record expired and then physically deletes
// the expired rows. Objects are removed after their rows are gone; a failed
// removal is logged and leaves an orphan object, never a dangling row.
func (m *SharedFileManager) DeleteExpired(ctx context.Context, now time.Time) ([]domain.Purged, error) {
	marked, err := m.repo.MarkExpired(ctx, now)
	if err != nil {
		return nil, apperr.Storage("mark expired", err)
	}
	if marked > 0 {
		m.logger.Debug("records marked expired", zap.Int64("count", marked))
	}

	purged, err := m.repo.DeleteExpired(ctx)
	if err != nil {
		return nil, apperr.Storage("delete expired", err)
	}
	m.removeObjects(ctx, purged)

	return purged, nil
}

// PurgeUser deletes every record the user sent or received.
func (m *SharedFileManager) PurgeUser(ctx context.Context, userUUID user.UUID) ([]domain.Purged, error) {
	purged, err := m.repo.DeleteUserFiles(ctx, userUUID)
	if err != nil {
		return nil, apperr.Storage("delete user files", err)
	}
	m.removeObjects(ctx, purged)

	return purged, nil
}

func (m *SharedFileManager) removeObjects(ctx context.Context, purged []domain.Purged) {
	for _, p := range purged {
		if err := m.blobs.DeleteObject(ctx, p.StorageKey); err != nil {
			m.logger.Error("object removal failed",
				zap.String("file_id", p.ID.String()),
				zap.String("storage_key", p.StorageKey),
				zap.Error(err))
			m.mCounter.WithLabelValues(metrics.BlobRemovalFailed).Inc()
		}
	}
}

func (m *SharedFileManager) ListForRecipient(ctx context.Context, recipientID user.UUID, now time.Time, page int) (domain.SharedFiles, error) {
	return readOnce(ctx, func(ctx context.Context) (domain.SharedFiles, error) {
		fs, err := m.repo.FetchRecipientFiles(ctx, recipientID, now, page)
		if err != nil {
			return nil, apperr.Storage("fetch recipient files", err)
		}
		return fs, nil
	})
}

func (m *SharedFileManager) ListForOwner(ctx context.Context, ownerID user.UUID, page int) (domain.SharedFiles, error) {
	return readOnce(ctx, func(ctx context.Context) (domain.SharedFiles, error) {
		fs, err := m.repo.FetchOwnerFiles(ctx, ownerID, page)
		if err != nil {
			return nil, apperr.Storage("fetch owner files", err)
		}
		return fs, nil
	})
}
