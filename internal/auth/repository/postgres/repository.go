package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wizrdcoder/blog-api/internal/auth/domain"
	autherror "github.com/wizrdcoder/blog-api/internal/errors"
)

// DB is satisfied by *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, username, full_name, password_hash, role,
		       is_active, is_verified, is_superuser, last_login, created_at, updated_at`

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 LIMIT 1;`, userColumns)
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1;`, userColumns)
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) GetByIDWithProfile(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT u.id, u.email, u.username, u.full_name, u.password_hash, u.role,
		       u.is_active, u.is_verified, u.is_superuser, u.last_login, u.created_at, u.updated_at,
		       p.bio, p.avatar_url, p.website, p.location, p.company
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		WHERE u.id = $1
		LIMIT 1;
	`
	row := r.db.QueryRow(ctx, query, id)

	var user domain.User
	var bio, avatarURL, website, location, company *string
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.FullName, &user.PasswordHash, &user.Role,
		&user.IsActive, &user.IsVerified, &user.IsSuperuser, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
		&bio, &avatarURL, &website, &location, &company,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user with profile: %w", err)
	}

	user.Profile = &domain.Profile{
		Bio:       deref(bio),
		AvatarURL: deref(avatarURL),
		Website:   deref(website),
		Location:  deref(location),
		Company:   deref(company),
	}
	return &user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, username, full_name, password_hash, role,
		                   is_active, is_verified, is_superuser, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, user.ID, user.Email, user.Username, user.FullName, user.PasswordHash, user.Role,
		user.IsActive, user.IsVerified, user.IsSuperuser, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET last_login = now() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.FullName, &user.PasswordHash, &user.Role,
		&user.IsActive, &user.IsVerified, &user.IsSuperuser, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// translateUniqueViolation maps SQLSTATE 23505 to the matching domain
// "already exists" error so callers never see a raw constraint failure.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return autherror.ErrEmailAlreadyInUse
		}
		return autherror.ErrUsernameAlreadyInUse
	}
	return fmt.Errorf("failed to create user: %w", err)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
