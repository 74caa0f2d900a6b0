package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lostgates/identity/internal/server/models"
	"github.com/lostgates/identity/internal/server/repositories/repomanager"
)

// ContentService backs the role-gated content endpoints. Role checks
// happen in the HTTP middleware against the session token; this service
// only records the writes.
type ContentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewContentService(db *sql.DB, m repomanager.RepositoryManager) *ContentService {
	return &ContentService{db: db, repomanager: m}
}

// CreatePost records a post authored by the given user.
func (s *ContentService) CreatePost(ctx context.Context, authorID, title, genre, description string) (*models.Post, error) {
	post := &models.Post{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Title:       title,
		Genre:       genre,
		Description: description,
	}
	return s.repomanager.Content(s.db).CreatePost(ctx, post)
}

// RegisterForEvent records the user as a participant of a test event.
func (s *ContentService) RegisterForEvent(ctx context.Context, eventID, userID string) error {
	return s.repomanager.Content(s.db).RegisterParticipant(ctx, eventID, userID)
}
