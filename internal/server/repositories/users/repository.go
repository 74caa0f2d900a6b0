package users

import (
	"context"

	"github.com/lostgates/identity/internal/server/models"
)

// Repository is the credential-store contract for user records. Lookups
// that find nothing return common.ErrorNotFound; uniqueness violations on
// Create surface as ErrorUsernameExists / ErrorEmailExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email string, passwordHash string) error
	UpdateResetToken(ctx context.Context, email string, token string) error
	SetVerified(ctx context.Context, email string, verified bool) error
	SetTwoFactorSecret(ctx context.Context, userID string, sealedSecret string) error
	EnableTwoFactor(ctx context.Context, userID string) error
	ListAll(ctx context.Context) ([]*models.User, error)
}
