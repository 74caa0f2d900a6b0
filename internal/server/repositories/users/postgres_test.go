package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lostgates/identity/internal/common"
	"github.com/lostgates/identity/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRows(u *models.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "role", "display_name",
		"social_links", "profile_picture", "is_verified", "two_factor_secret",
		"two_factor_enabled", "reset_token", "created_at",
	}).AddRow(
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.DisplayName,
		u.SocialLinks, u.ProfilePicture, u.IsVerified, u.TwoFactorSecret,
		u.TwoFactorEnabled, u.ResetToken, u.CreatedAt,
	)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now()
	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users`).
		WithArgs("u-1", "alice", "alice@example.com", "$2a$12$digest", "Dev",
			"Alice", "", "", "sealed-seed").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	u := &models.User{
		ID: "u-1", Username: "alice", Email: "alice@example.com",
		PasswordHash: "$2a$12$digest", Role: models.RoleDev,
		DisplayName: "Alice", TwoFactorSecret: "sealed-seed",
	}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at from store, got %v", got.CreatedAt)
	}
}

func TestCreate_DuplicateUsername(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := repo.Create(context.Background(), &models.User{ID: "u-1", Username: "alice"})
	if !errors.Is(err, common.ErrorUsernameExists) {
		t.Fatalf("expected ErrorUsernameExists, got %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{ID: "u-1", Email: "a@b.c"})
	if !errors.Is(err, common.ErrorEmailExists) {
		t.Fatalf("expected ErrorEmailExists, got %v", err)
	}
}

func TestCreate_StoreUnavailable(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users`).
		WillReturnError(context.DeadlineExceeded)

	_, err := repo.Create(context.Background(), &models.User{ID: "u-1"})
	if !errors.Is(err, common.ErrorStoreUnavailable) {
		t.Fatalf("expected ErrorStoreUnavailable, got %v", err)
	}
}

func TestGetByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	want := &models.User{
		ID: "u-1", Username: "alice", Email: "alice@example.com",
		PasswordHash: "$2a$12$digest", Role: models.RoleTester,
		TwoFactorSecret: "sealed", TwoFactorEnabled: true, CreatedAt: time.Now(),
	}
	mock.ExpectQuery(`(?s)^\s*SELECT\s+.+\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`).
		WithArgs("alice").
		WillReturnRows(userRows(want))

	got, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.ID != "u-1" || !got.TwoFactorEnabled || got.Role != models.RoleTester {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*SELECT\s+.+\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestUpdateResetToken_SetAndClear(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+users\s+SET\s+reset_token\s*=\s*\$1\s+WHERE\s+email\s*=\s*\$2\s*$`

	mock.ExpectExec(q).WithArgs("tok-1", "alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.UpdateResetToken(context.Background(), "alice@example.com", "tok-1"); err != nil {
		t.Fatalf("set reset token: %v", err)
	}

	mock.ExpectExec(q).WithArgs("", "alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.UpdateResetToken(context.Background(), "alice@example.com", ""); err != nil {
		t.Fatalf("clear reset token: %v", err)
	}
}

func TestUpdatePassword_UnknownEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*UPDATE\s+users\s+SET\s+password_hash`).
		WithArgs("$2a$12$new", "ghost@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "ghost@example.com", "$2a$12$new")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound for zero affected rows, got %v", err)
	}
}

func TestSetTwoFactorSecret_ResetsEnabledFlag(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*UPDATE\s+users\s+SET\s+two_factor_secret\s*=\s*\$1,\s*two_factor_enabled\s*=\s*FALSE\s+WHERE\s+id\s*=\s*\$2\s*$`).
		WithArgs("sealed-new", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetTwoFactorSecret(context.Background(), "u-1", "sealed-new"); err != nil {
		t.Fatalf("SetTwoFactorSecret error: %v", err)
	}
}

func TestEnableTwoFactor(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*UPDATE\s+users\s+SET\s+two_factor_enabled\s*=\s*TRUE\s+WHERE\s+id\s*=\s*\$1\s*$`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.EnableTwoFactor(context.Background(), "u-1"); err != nil {
		t.Fatalf("EnableTwoFactor error: %v", err)
	}
}

func TestListAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := userRows(&models.User{ID: "u-1", Username: "alice", Role: models.RoleAdmin, CreatedAt: time.Now()})
	mock.ExpectQuery(`(?s)^\s*SELECT\s+.+\s+FROM\s+users\s+ORDER\s+BY\s+created_at\s+DESC\s*$`).
		WillReturnRows(rows)

	got, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(got) != 1 || got[0].Username != "alice" {
		t.Fatalf("unexpected result: %+v", got)
	}
}
