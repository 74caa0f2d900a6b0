// Package users provides the PostgreSQL-backed credential store for user
// records.
package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lostgates/identity/internal/common"
	"github.com/lostgates/identity/internal/dbx"
	"github.com/lostgates/identity/internal/server/models"
	"github.com/lostgates/identity/internal/server/repositories/pgerr"
)

const userColumns = `id, username, email, password_hash, role, display_name,
	social_links, profile_picture, is_verified, two_factor_secret,
	two_factor_enabled, reset_token, created_at`

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. The unique indexes on username and email are
// the source of truth for duplicates; their violations map to the
// corresponding sentinel errors.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, email, password_hash, role,
			display_name, social_links, profile_picture, two_factor_secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
		user.DisplayName, user.SocialLinks, user.ProfilePicture, user.TwoFactorSecret,
	).Scan(&user.CreatedAt)
	if err != nil {
		if constraint, ok := pgerr.UniqueConstraint(err); ok {
			switch constraint {
			case "users_username_key":
				return nil, common.ErrorUsernameExists
			case "users_email_key":
				return nil, common.ErrorEmailExists
			}
		}
		return nil, pgerr.Wrap(err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&user.DisplayName, &user.SocialLinks, &user.ProfilePicture,
		&user.IsVerified, &user.TwoFactorSecret, &user.TwoFactorEnabled,
		&user.ResetToken, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, pgerr.Wrap(err)
	}
	return user, nil
}

// UpdatePassword replaces the stored digest for the given email.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, email string, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE email = $2`
	return r.exec(ctx, query, passwordHash, email)
}

// UpdateResetToken stores the last-issued reset token; an empty value
// clears it after a successful reset (single-use).
func (r *PostgresRepository) UpdateResetToken(ctx context.Context, email string, token string) error {
	query := `UPDATE users SET reset_token = $1 WHERE email = $2`
	return r.exec(ctx, query, token, email)
}

// SetVerified flips the email-ownership flag.
func (r *PostgresRepository) SetVerified(ctx context.Context, email string, verified bool) error {
	query := `UPDATE users SET is_verified = $1 WHERE email = $2`
	return r.exec(ctx, query, verified, email)
}

// SetTwoFactorSecret replaces the sealed TOTP seed and drops the enabled
// flag until the next successful code check.
func (r *PostgresRepository) SetTwoFactorSecret(ctx context.Context, userID string, sealedSecret string) error {
	query := `UPDATE users SET two_factor_secret = $1, two_factor_enabled = FALSE WHERE id = $2`
	return r.exec(ctx, query, sealedSecret, userID)
}

// EnableTwoFactor marks enrollment complete.
func (r *PostgresRepository) EnableTwoFactor(ctx context.Context, userID string) error {
	query := `UPDATE users SET two_factor_enabled = TRUE WHERE id = $1`
	return r.exec(ctx, query, userID)
}

// ListAll returns every user record, newest first.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, pgerr.Wrap(err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
			&user.DisplayName, &user.SocialLinks, &user.ProfilePicture,
			&user.IsVerified, &user.TwoFactorSecret, &user.TwoFactorEnabled,
			&user.ResetToken, &user.CreatedAt,
		); err != nil {
			return nil, pgerr.Wrap(err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, pgerr.Wrap(err)
	}
	return result, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return pgerr.Wrap(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return pgerr.Wrap(err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
