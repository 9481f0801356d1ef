package key

import (
	"time"

	"github.com/google/uuid"
)

type (
	ProvisionRequest struct {
		Password string `json:"password"`
	}
	PublicKey struct {
		UserID    uuid.UUID  `json:"user_id"`
		PublicKey string     `json:"public_key"`
		CreatedAt *time.Time `json:"created_at,omitempty"`
	}
)
