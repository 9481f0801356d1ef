package ports

import (
	"context"

	"fileshare-api/internal/infrastructure/scanner"
)

type Scanner interface {
	Scan(ctx context.Context, data []byte) (scanner.Verdict, error)
}
