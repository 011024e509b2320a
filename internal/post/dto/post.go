package dto

import (
	"time"

	"github.com/wizrdcoder/blog-api/internal/post/domain"
)

type PostCreateInput struct {
	Title     string `json:"title" validate:"required,min=1,max=200"`
	Content   string `json:"content" validate:"required"`
	Published bool   `json:"published"`
}

type PostUpdateInput struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content   *string `json:"content" validate:"omitempty,min=1"`
	Published *bool   `json:"published"`
}

type PostOutput struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Published   bool       `json:"published"`
	AuthorID    string     `json:"author_id"`
	ViewCount   int        `json:"view_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func NewPostOutput(p *domain.Post) *PostOutput {
	return &PostOutput{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Published:   p.Published,
		AuthorID:    p.AuthorID,
		ViewCount:   p.ViewCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		PublishedAt: p.PublishedAt,
	}
}

func NewPostListOutput(posts []domain.Post) []*PostOutput {
	out := make([]*PostOutput, 0, len(posts))
	for i := range posts {
		out = append(out, NewPostOutput(&posts[i]))
	}
	return out
}
