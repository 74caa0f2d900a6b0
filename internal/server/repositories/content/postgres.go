// Package content provides the PostgreSQL-backed store behind the
// role-gated post-creation and event-registration endpoints.
package content

import (
	"context"

	"github.com/lostgates/identity/internal/dbx"
	"github.com/lostgates/identity/internal/server/models"
	"github.com/lostgates/identity/internal/server/repositories/pgerr"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreatePost records a post with its author.
func (r *PostgresRepository) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (id, author_id, title, genre, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		post.ID, post.AuthorID, post.Title, post.Genre, post.Description,
	).Scan(&post.CreatedAt)
	if err != nil {
		return nil, pgerr.Wrap(err)
	}
	return post, nil
}

// RegisterParticipant records a tester's registration for a test event.
// Registering twice is a no-op, not an error.
func (r *PostgresRepository) RegisterParticipant(ctx context.Context, eventID string, userID string) error {
	query := `
		INSERT INTO event_participants (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, eventID, userID); err != nil {
		return pgerr.Wrap(err)
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
