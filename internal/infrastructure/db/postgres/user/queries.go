package user

const (
	userColumns = `id, uuid, email, password_hash, role, name, lastname, birth_date, phone,
		public_key, private_key_material, key_created_at,
		created_at, updated_at, deleted_at, deleted_reason, deleted_by`

	SelectUsers = `
		SELECT ` + userColumns + `
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY id
		LIMIT 50 OFFSET ( ($1 - 1) * 50 )
	`
	SelectUserByID = `
		SELECT ` + userColumns + `
		FROM users
		WHERE uuid = $1 AND deleted_at IS NULL
	`
	SelectUserByEmail = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND deleted_at IS NULL
	`
	InsertUser = `
		INSERT INTO users (email, password_hash, name, lastname, birth_date, phone, deleted_reason)
		VALUES ($1, $2, $3, $4, $5, $6, '')
		RETURNING ` + userColumns
	UpdateUserByUUID = `
		UPDATE users
		SET email = $1,
		    name = $2,
		    lastname = $3,
		    birth_date = $4,
		    phone = $5,
		    updated_at = now()
		WHERE uuid = $6 AND deleted_at IS NULL
		RETURNING ` + userColumns
	SelectIdByUUID     = `SELECT id FROM users WHERE uuid = $1::uuid AND deleted_at IS NULL`
	SoftDeleteUserByID = `
		UPDATE users
		SET deleted_at = now(),
		    public_key = NULL,
		    private_key_material = NULL
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + userColumns
	SetUserKeyPair = `
		UPDATE users
		SET public_key = $1,
		    private_key_material = $2,
		    key_created_at = $3,
		    updated_at = now()
		WHERE uuid = $4 AND deleted_at IS NULL AND public_key IS NULL
	`
)
