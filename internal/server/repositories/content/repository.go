package content

import (
	"context"

	"github.com/lostgates/identity/internal/server/models"
)

// Repository is the narrow contract the role-gated endpoints need from
// the content side of the platform: recording a new playtest post and a
// tester's event registration. The full content pipeline lives with an
// external collaborator.
type Repository interface {
	CreatePost(ctx context.Context, post *models.Post) (*models.Post, error)
	RegisterParticipant(ctx context.Context, eventID string, userID string) error
}
