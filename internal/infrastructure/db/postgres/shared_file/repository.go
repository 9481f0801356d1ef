package shared_file

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domain "fileshare-api/internal/domain/shared_file"
	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) domain.Repository {
	return &Repository{db: db}
}

func scanSharedFile(row pgx.Row) (*SharedFile, error) {
	f := new(SharedFile)
	err := row.Scan(
		&f.ID,
		&f.OwnerUUID,
		&f.RecipientUUID,

		&f.FileName,
		&f.ContentType,
		&f.SizeBytes,

		&f.Bucket,
		&f.StorageKey,
		&f.CiphertextSize,
		&f.WrappedKey,
		&f.AccessPasswordHash,

		&f.Status,
		&f.RetrievalCount,

		&f.CreatedAt,
		&f.ExpiresAt,
		&f.RetrievedAt,
	)
	return f, err
}

func (r *Repository) CreateSharedFile(ctx context.Context, req *domain.SharedFile) (*domain.SharedFile, error) {
	f, err := scanSharedFile(r.db.QueryRow(
		ctx,
		InsertSharedFile,
		req.ID, req.OwnerID, req.RecipientID, req.FileName, req.ContentType, req.SizeBytes,
		req.Bucket, req.StorageKey, req.CiphertextSize, req.WrappedKey, req.AccessPasswordHash,
		req.CreatedAt, req.ExpiresAt,
	))
	if err != nil {
		return nil, err
	}

	return fromDBModel(f)
}

func (r *Repository) FetchSharedFile(ctx context.Context, id domain.ID) (*domain.SharedFile, error) {
	f, err := scanSharedFile(r.db.QueryRow(ctx, SelectSharedFileByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(f)
}

func (r *Repository) FetchRecipientFiles(
	ctx context.Context,
	recipientID user.UUID,
	now time.Time,
	page int,
) (domain.SharedFiles, error) {
	return r.fetchMany(ctx, SelectRecipientFiles, recipientID, now, page)
}

func (r *Repository) FetchOwnerFiles(ctx context.Context, ownerID user.UUID, page int) (domain.SharedFiles, error) {
	return r.fetchMany(ctx, SelectOwnerFiles, ownerID, page)
}

func (r *Repository) fetchMany(ctx context.Context, query string, args ...any) (domain.SharedFiles, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fs SharedFiles
	for rows.Next() {
		f, err := scanSharedFile(rows)
		if err != nil {
			return nil, err
		}

		fs = append(fs, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&fs)
}

func (r *Repository) LockForRead(
	ctx context.Context,
	id domain.ID,
	fn func(ctx context.Context, f *domain.SharedFile) error,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}

	m, err := scanSharedFile(tx.QueryRow(ctx, SelectSharedFileForShare, id))
	if err != nil {
		_ = tx.Rollback(ctx)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	f, err := fromDBModel(m)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err = fn(ctx, f); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) MarkRetrieved(ctx context.Context, id domain.ID, now time.Time, singleRetrieval bool) (bool, error) {
	query := MarkRetrievedAgain
	if singleRetrieval {
		query = MarkRetrievedOnce
	}

	tag, err := r.db.Exec(ctx, query, id, now)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (r *Repository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, MarkExpiredFiles, now)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *Repository) DeleteExpired(ctx context.Context) ([]domain.Purged, error) {
	return r.purge(ctx, DeleteExpiredFiles)
}

func (r *Repository) DeleteUserFiles(ctx context.Context, userID user.UUID) ([]domain.Purged, error) {
	return r.purge(ctx, DeleteFilesOfUser, userID)
}

func (r *Repository) purge(ctx context.Context, query string, args ...any) ([]domain.Purged, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Purged
	for rows.Next() {
		var p domain.Purged
		if err = rows.Scan(&p.ID, &p.Bucket, &p.StorageKey); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
