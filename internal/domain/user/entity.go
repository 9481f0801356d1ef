package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type (
	ID   uint64
	UUID = uuid.UUID
	User struct {
		UUID         UUID
		Email        string
		PasswordHash *string
		Role         string
		Name         string
		Lastname     string
		BirthDate    time.Time
		Phone        string

		// PublicKey is a PEM encoded PKIX key, empty until the user provisions keys.
		PublicKey          string
		PrivateKeyMaterial []byte
		KeyCreatedAt       *time.Time

		CreatedAt time.Time
		UpdatedAt time.Time

		DeletedAt     *time.Time
		DeletedReason string
		DeletedBy     *ID
	}
	Users []*User
)

func (u *User) HasPublicKey() bool { return u != nil && u.PublicKey != "" }
