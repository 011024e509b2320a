package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wizrdcoder/blog-api/internal/post/domain"
)

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

func (r *PostgresRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Post, error) {
	query := `
		SELECT id, title, content, published, author_id, view_count,
		       created_at, updated_at, published_at
		FROM posts
		WHERE ($1::boolean = false OR published = true)
		  AND ($2::text = '' OR author_id = $2)
		  AND ($3::text = '' OR title ILIKE '%' || $3 || '%' OR content ILIKE '%' || $3 || '%')
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5;
	`
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx, query,
		filter.PublishedOnly, filter.AuthorID, filter.Search, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Content, &p.Published, &p.AuthorID, &p.ViewCount,
			&p.CreatedAt, &p.UpdatedAt, &p.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}
	return posts, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, title, content, published, author_id, view_count,
		       created_at, updated_at, published_at
		FROM posts
		WHERE id = $1
		LIMIT 1;
	`, id)

	var p domain.Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Published, &p.AuthorID, &p.ViewCount,
		&p.CreatedAt, &p.UpdatedAt, &p.PublishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, post *domain.Post) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO posts (id, title, content, published, author_id, view_count,
		                   created_at, updated_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, post.ID, post.Title, post.Content, post.Published, post.AuthorID, post.ViewCount,
		post.CreatedAt, post.UpdatedAt, post.PublishedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, post *domain.Post) error {
	_, err := r.db.Exec(ctx, `
		UPDATE posts
		SET title = $2, content = $3, published = $4, updated_at = $5, published_at = $6
		WHERE id = $1
	`, post.ID, post.Title, post.Content, post.Published, post.UpdatedAt, post.PublishedAt)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	return nil
}
