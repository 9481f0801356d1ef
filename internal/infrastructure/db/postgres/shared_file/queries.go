package shared_file

const (
	sharedFileColumns = `id, owner_uuid, recipient_uuid, file_name, content_type, size_bytes,
		bucket, storage_key, ciphertext_size, wrapped_key, access_password_hash,
		status, retrieval_count, created_at, expires_at, retrieved_at`

	InsertSharedFile = `
		INSERT INTO shared_files (
			id, owner_uuid, recipient_uuid, file_name, content_type, size_bytes,
			bucket, storage_key, ciphertext_size, wrapped_key, access_password_hash,
			status, created_at, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'active', $12, $13)
		RETURNING ` + sharedFileColumns
	SelectSharedFileByID = `
		SELECT ` + sharedFileColumns + `
		FROM shared_files
		WHERE id = $1
	`
	// Held while the ciphertext object is read; DELETE waits on it.
	SelectSharedFileForShare = `
		SELECT ` + sharedFileColumns + `
		FROM shared_files
		WHERE id = $1
		FOR SHARE
	`
	SelectRecipientFiles = `
		SELECT ` + sharedFileColumns + `
		FROM shared_files
		WHERE recipient_uuid = $1
		  AND status IN ('active', 'retrieved')
		  AND expires_at > $2
		ORDER BY created_at DESC
		LIMIT 50 OFFSET ( ($3 - 1) * 50 )
	`
	SelectOwnerFiles = `
		SELECT ` + sharedFileColumns + `
		FROM shared_files
		WHERE owner_uuid = $1
		ORDER BY created_at DESC
		LIMIT 50 OFFSET ( ($2 - 1) * 50 )
	`
	MarkRetrievedOnce = `
		UPDATE shared_files
		SET status = 'retrieved',
		    retrieved_at = $2,
		    retrieval_count = retrieval_count + 1
		WHERE id = $1 AND status = 'active' AND expires_at > $2
	`
	MarkRetrievedAgain = `
		UPDATE shared_files
		SET status = 'retrieved',
		    retrieved_at = $2,
		    retrieval_count = retrieval_count + 1
		WHERE id = $1 AND status IN ('active', 'retrieved') AND expires_at > $2
	`
	MarkExpiredFiles = `
		UPDATE shared_files
		SET status = 'expired'
		WHERE status IN ('active', 'retrieved') AND expires_at <= $1
	`
	DeleteExpiredFiles = `
		DELETE FROM shared_files
		WHERE status = 'expired'
		RETURNING id, bucket, storage_key
	`
	DeleteFilesOfUser = `
		DELETE FROM shared_files
		WHERE owner_uuid = $1 OR recipient_uuid = $1
		RETURNING id, bucket, storage_key
	`
)
