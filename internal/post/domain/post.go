package domain

//go:generate mockgen -destination=../../mocks/mock_post_repository.go -package=mocks github.com/wizrdcoder/blog-api/internal/post/domain PostRepository

import (
	"context"
	"time"
)

type Post struct {
	ID          string
	Title       string
	Content     string
	Published   bool
	AuthorID    string
	ViewCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

// ListFilter narrows a post listing. Zero values mean "no filter".
type ListFilter struct {
	PublishedOnly bool
	AuthorID      string
	Search        string
	Limit         int
	Offset        int
}

type PostRepository interface {
	List(ctx context.Context, filter ListFilter) ([]Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	Create(ctx context.Context, post *Post) error
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) error
}
