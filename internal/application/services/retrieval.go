package services

import (
	"context"
	"crypto/rsa"

	"go.uber.org/zap"

	"fileshare-api/internal/application/apperr"
	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/shared_file"
	"fileshare-api/internal/infrastructure/cryptox"
	"fileshare-api/internal/infrastructure/metrics"
	"fileshare-api/internal/infrastructure/mq"
)

// Retrieve authorizes the caller, decrypts the file and records the retrieval.
// A missing record and a record addressed to someone else fail identically.
func (sfs *SharedFileService) Retrieve(ctx context.Context, req ports.RetrieveRequest) (*ports.Retrieved, error) {
	out, f, err := sfs.retrieve(ctx, req)
	if err != nil {
		sfs.mCounter.WithLabelValues(metrics.RetrievalDenied).Inc()
		sfs.logger.Info("retrieval denied",
			zap.String("file_id", req.FileID.String()),
			zap.String("caller_id", req.CallerID.String()),
			zap.String("kind", apperr.KindOf(err).String()),
			zap.Error(err),
		)
		return nil, err
	}

	sfs.mCounter.WithLabelValues(metrics.FileRetrieved).Inc()
	sfs.mq.Publish(mq.NewEvent(mq.FileRetrieved, f.ID.String(), toFileEvent(f)))

	return out, nil
}

func (sfs *SharedFileService) retrieve(ctx context.Context, req ports.RetrieveRequest) (*ports.Retrieved, *domain.SharedFile, error) {
	now := sfs.clock().UTC()

	f, err := sfs.files.Load(ctx, req.FileID)
	if err != nil {
		return nil, nil, err
	}
	if f.RecipientID != req.CallerID {
		return nil, nil, apperr.ErrFileNotFound
	}

	if f.HasPasswordGate() {
		if req.Password == "" {
			return nil, nil, apperr.ErrInvalidPassword
		}
		ok, err := cryptox.VerifyPassword(*f.AccessPasswordHash, req.Password)
		if err != nil {
			return nil, nil, apperr.Storage("verify password", err)
		}
		if !ok {
			return nil, nil, apperr.ErrInvalidPassword
		}
	}

	if f.ExpiredAt(now) {
		return nil, nil, apperr.ErrExpired
	}
	if sfs.files.SingleRetrieval() && f.Status == domain.StatusRetrieved {
		return nil, nil, apperr.ErrAlreadyConsumed
	}

	ciphertext, locked, err := sfs.files.LoadCiphertext(ctx, f.ID, now)
	if err != nil {
		return nil, nil, err
	}

	var plaintext []byte
	err = sfs.keys.WithPrivateKey(ctx, req.CallerID, req.KeyPassword, func(priv *rsa.PrivateKey) error {
		pt, err := cryptox.Open(ciphertext, locked.WrappedKey, priv)
		if err != nil {
			return apperr.Wrap(apperr.ErrDecryptionFailed, err)
		}
		plaintext = pt
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if err = sfs.files.MarkRetrieved(ctx, f.ID, now); err != nil {
		cryptox.WipeByteArray(plaintext)
		return nil, nil, err
	}
	locked.Status = domain.StatusRetrieved
	locked.RetrievalCount++
	locked.RetrievedAt = &now

	return &ports.Retrieved{
		FileName:    locked.FileName,
		ContentType: locked.ContentType,
		Content:     plaintext,
	}, locked, nil
}
