package shared_file

import (
	"fileshare-api/internal/domain/shared_file"
)

func ToResponseFile(fDomain shared_file.SharedFile) File {
	var f = File{
		ID:             fDomain.ID,
		OwnerID:        fDomain.OwnerID,
		RecipientID:    fDomain.RecipientID,
		FileName:       fDomain.FileName,
		ContentType:    fDomain.ContentType,
		SizeBytes:      fDomain.SizeBytes,
		Status:         fDomain.Status.String(),
		PasswordGated:  fDomain.HasPasswordGate(),
		RetrievalCount: fDomain.RetrievalCount,
		CreatedAt:      fDomain.CreatedAt,
		ExpiresAt:      fDomain.ExpiresAt,
		RetrievedAt:    fDomain.RetrievedAt,
	}

	return f
}

func ToResponseFiles(fsDomain shared_file.SharedFiles) Files {
	fs := make(Files, len(fsDomain))
	for idx, f := range fsDomain {
		fs[idx] = ToResponseFile(*f)
	}

	return fs
}
