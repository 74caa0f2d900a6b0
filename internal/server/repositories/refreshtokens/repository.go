package refreshtokens

import (
	"context"
	"time"

	"github.com/lostgates/identity/internal/server/models"
)

// Repository stores server-side refresh tokens. Tokens are single-use:
// the service deletes a token inside the same transaction that creates
// its replacement.
type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID string) error
}
