package services

import (
	"context"
	"errors"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fileshare-api/internal/application/apperr"
	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/shared_file"
	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/cryptox"
	"fileshare-api/internal/infrastructure/metrics"
	"fileshare-api/internal/infrastructure/mq"
)

const dateOnly = "2006-01-02"

// ParseExpiration accepts RFC 3339 or YYYY-MM-DD (midnight UTC) and
// requires the result to be strictly after now.
func ParseExpiration(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.Wrap(apperr.ErrInvalidExpiration, errors.New("expiration_date is required"))
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		if t, err = time.ParseInLocation(dateOnly, s, time.UTC); err != nil {
			return time.Time{}, apperr.Wrap(apperr.ErrInvalidExpiration, err)
		}
	}
	if !t.After(now) {
		return time.Time{}, apperr.ErrInvalidExpiration
	}

	return t.UTC(), nil
}

func (sfs *SharedFileService) Upload(ctx context.Context, req ports.UploadRequest) (*domain.SharedFile, error) {
	out, err := sfs.upload(ctx, req)
	if err != nil {
		sfs.mCounter.WithLabelValues(metrics.FileRejected).Inc()
		return nil, err
	}

	sfs.mCounter.WithLabelValues(metrics.FileShared).Inc()
	sfs.mq.Publish(mq.NewEvent(mq.FileShared, out.ID.String(), toFileEvent(out)))
	sfs.logger.Info("file shared",
		zap.String("file_id", out.ID.String()),
		zap.String("owner_id", out.OwnerID.String()),
		zap.String("recipient_id", out.RecipientID.String()),
		zap.Int64("size_bytes", out.SizeBytes),
	)

	return out, nil
}

func (sfs *SharedFileService) upload(ctx context.Context, req ports.UploadRequest) (*domain.SharedFile, error) {
	now := sfs.clock().UTC()

	recipient, err := sfs.resolveRecipient(ctx, req.RecipientEmail)
	if err != nil {
		return nil, err
	}
	pub, _, err := sfs.keys.LookupPublicKey(ctx, recipient.UUID)
	if err != nil {
		if errors.Is(err, apperr.ErrPublicKeyNotFound) {
			return nil, apperr.ErrRecipientHasNoKey
		}
		return nil, err
	}

	expiresAt, err := ParseExpiration(req.ExpirationDate, now)
	if err != nil {
		return nil, err
	}

	plaintext, err := sfs.readFile(req)
	if err != nil {
		return nil, err
	}
	defer cryptox.WipeByteArray(plaintext)

	var passwordHash *string
	if req.Password != "" {
		h, err := cryptox.HashPassword(req.Password, sfs.hashParams)
		if err != nil {
			if errors.Is(err, cryptox.ErrPasswordTooLong) {
				return nil, apperr.Validation(apperr.CodeInvalidInput, "invalid password",
					map[string]string{"password": "password must be at most 64 characters"})
			}
			return nil, apperr.Storage("hash password", err)
		}
		passwordHash = &h
	}

	if sfs.scanner != nil {
		verdict, err := sfs.scanner.Scan(ctx, plaintext)
		if err != nil {
			return nil, apperr.Storage("scan upload", err)
		}
		if verdict.Infected {
			return nil, apperr.ErrMalwareDetected
		}
	}

	sealed, err := cryptox.Seal(plaintext, pub)
	if err != nil {
		return nil, apperr.Storage("encrypt upload", err)
	}

	fileName := cleanFileName(req.File.Filename)
	contentType := req.File.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := uuid.New()
	rec := &domain.SharedFile{
		ID:                 id,
		OwnerID:            req.OwnerID,
		RecipientID:        recipient.UUID,
		FileName:           fileName,
		ContentType:        contentType,
		SizeBytes:          int64(len(plaintext)),
		StorageKey:         storageKey(id, fileName, contentType, now),
		WrappedKey:         sealed.WrappedKey,
		AccessPasswordHash: passwordHash,
		Status:             domain.StatusActive,
		CreatedAt:          now,
		ExpiresAt:          expiresAt,
	}

	return sfs.files.Create(ctx, rec, sealed.Ciphertext)
}

func (sfs *SharedFileService) resolveRecipient(ctx context.Context, email string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "invalid input",
			map[string]string{"recipient_email": "recipient_email is required"})
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "invalid input",
			map[string]string{"recipient_email": "invalid email format"})
	}

	u, err := readOnce(ctx, func(ctx context.Context) (*user.User, error) {
		u, err := sfs.userRepository.FetchUserByEmail(ctx, email)
		if err != nil {
			return nil, apperr.Storage("fetch recipient", err)
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrRecipientNotFound
	}

	return u, nil
}

func (sfs *SharedFileService) readFile(req ports.UploadRequest) ([]byte, error) {
	if req.File == nil {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "invalid input",
			map[string]string{"file": "file is required"})
	}
	if req.File.Size == 0 {
		return nil, apperr.ErrEmptyFile
	}
	if req.File.Size > sfs.maxFileSize {
		return nil, apperr.ErrFileTooLarge
	}

	f, err := req.File.Open()
	if err != nil {
		return nil, apperr.Storage("open upload", err)
	}
	defer f.Close()

	// header size is client supplied; bound the actual read as well
	b, err := io.ReadAll(io.LimitReader(f, sfs.maxFileSize+1))
	if err != nil {
		return nil, apperr.Storage("read upload", err)
	}
	switch {
	case len(b) == 0:
		return nil, apperr.ErrEmptyFile
	case int64(len(b)) > sfs.maxFileSize:
		cryptox.WipeByteArray(b)
		return nil, apperr.ErrFileTooLarge
	}

	return b, nil
}
