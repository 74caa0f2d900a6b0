package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/lostgates/identity/internal/common"
	"github.com/lostgates/identity/internal/dbx"
	"github.com/lostgates/identity/internal/server/models"
	"github.com/lostgates/identity/internal/server/repositories/content"
	"github.com/lostgates/identity/internal/server/repositories/refreshtokens"
	"github.com/lostgates/identity/internal/server/repositories/users"
)

// In-memory fakes standing in for the PostgreSQL repositories. They
// implement just enough behavior for the service flows under test.

type fakeUsersRepo struct {
	users map[string]*models.User // keyed by id
	err   error                   // returned by every method when set
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: make(map[string]*models.User)}
}

func (f *fakeUsersRepo) add(u *models.User) { f.users[u.ID] = u }

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Username == user.Username {
			return nil, common.ErrorUsernameExists
		}
		if u.Email == user.Email {
			return nil, common.ErrorEmailExists
		}
	}
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, email string, passwordHash string) error {
	if f.err != nil {
		return f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdateResetToken(ctx context.Context, email string, token string) error {
	if f.err != nil {
		return f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			u.ResetToken = token
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeUsersRepo) SetVerified(ctx context.Context, email string, verified bool) error {
	if f.err != nil {
		return f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			u.IsVerified = verified
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeUsersRepo) SetTwoFactorSecret(ctx context.Context, userID string, sealedSecret string) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.TwoFactorSecret = sealedSecret
	u.TwoFactorEnabled = false
	return nil
}

func (f *fakeUsersRepo) EnableTwoFactor(ctx context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.TwoFactorEnabled = true
	return nil
}

func (f *fakeUsersRepo) ListAll(ctx context.Context) ([]*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeRefreshRepo struct {
	tokens map[string]*models.RefreshToken // keyed by token value
	err    error
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.tokens[token] = &models.RefreshToken{
		UserID:  userID,
		Token:   token,
		Expires: time.Now().Add(validity),
	}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	if t, ok := f.tokens[token]; ok {
		return t, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.tokens[token]; !ok {
		return common.ErrorNotFound
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteByUser(ctx context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	for k, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, k)
		}
	}
	return nil
}

type fakeContentRepo struct {
	posts        []*models.Post
	participants map[string][]string // eventID -> userIDs
	err          error
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{participants: make(map[string][]string)}
}

func (f *fakeContentRepo) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	post.CreatedAt = time.Now()
	f.posts = append(f.posts, post)
	return post, nil
}

func (f *fakeContentRepo) RegisterParticipant(ctx context.Context, eventID string, userID string) error {
	if f.err != nil {
		return f.err
	}
	for _, id := range f.participants[eventID] {
		if id == userID {
			return nil
		}
	}
	f.participants[eventID] = append(f.participants[eventID], userID)
	return nil
}

type fakeRepoManager struct {
	usersRepo   *fakeUsersRepo
	refreshRepo *fakeRefreshRepo
	contentRepo *fakeContentRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		usersRepo:   newFakeUsersRepo(),
		refreshRepo: newFakeRefreshRepo(),
		contentRepo: newFakeContentRepo(),
	}
}

func (f *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository { return f.usersRepo }

func (f *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return f.refreshRepo }

func (f *fakeRepoManager) Content(db dbx.DBTX) content.Repository { return f.contentRepo }
