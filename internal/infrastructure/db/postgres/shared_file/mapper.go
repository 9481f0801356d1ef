package shared_file

import (
	"fmt"

	domain "fileshare-api/internal/domain/shared_file"
)

func fromDBModel(model *SharedFile) (*domain.SharedFile, error) {
	status, err := domain.ParseStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("shared file %s: %w", model.ID, err)
	}

	var f = &domain.SharedFile{
		ID:          model.ID,
		OwnerID:     model.OwnerUUID,
		RecipientID: model.RecipientUUID,

		FileName:    model.FileName,
		ContentType: model.ContentType,
		SizeBytes:   model.SizeBytes,

		Bucket:         model.Bucket,
		StorageKey:     model.StorageKey,
		CiphertextSize: model.CiphertextSize,
		WrappedKey:     model.WrappedKey,

		AccessPasswordHash: model.AccessPasswordHash,

		Status:         status,
		RetrievalCount: model.RetrievalCount,

		CreatedAt:   model.CreatedAt,
		ExpiresAt:   model.ExpiresAt,
		RetrievedAt: model.RetrievedAt,
	}

	return f, nil
}

func fromDBModels(models *SharedFiles) (domain.SharedFiles, error) {
	fs := make(domain.SharedFiles, len(*models))
	for idx, m := range *models {
		f, err := fromDBModel(m)
		if err != nil {
			return nil, err
		}
		fs[idx] = f
	}

	return fs, nil
}
