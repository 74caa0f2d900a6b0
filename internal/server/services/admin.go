package services

import (
	"context"
	"database/sql"

	"github.com/lostgates/identity/internal/common"
	"github.com/lostgates/identity/internal/server/models"
	"github.com/lostgates/identity/internal/server/repositories/repomanager"
)

// AdminService exposes administrative reads over the credential store.
// Every operation re-fetches the caller's role from the store; the role
// claim inside a session token may be stale and is not trusted here.
type AdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager) *AdminService {
	return &AdminService{db: db, repomanager: m}
}

// ListUsers returns every account, for callers whose live role is Admin.
// A demoted admin holding an unexpired token gets ErrorForbidden.
func (s *AdminService) ListUsers(ctx context.Context, requesterID string) ([]*models.User, error) {
	repo := s.repomanager.Users(s.db)

	requester, err := repo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requester.Role != models.RoleAdmin {
		return nil, common.ErrorForbidden
	}

	return repo.ListAll(ctx)
}
