package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	authdomain "github.com/wizrdcoder/blog-api/internal/auth/domain"
	autherror "github.com/wizrdcoder/blog-api/internal/errors"
	"github.com/wizrdcoder/blog-api/internal/post/domain"
	"github.com/wizrdcoder/blog-api/internal/post/dto"
	"github.com/wizrdcoder/blog-api/pkg/constant"
)

type PostService struct {
	repo domain.PostRepository
}

func NewPostService(repo domain.PostRepository) *PostService {
	return &PostService{repo: repo}
}

func (s *PostService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Post, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a post and bumps its view counter. A failed bump does not fail
// the read.
func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, autherror.ErrPostNotFound
	}
	_ = s.repo.IncrementViewCount(ctx, id)
	return post, nil
}

func (s *PostService) Create(ctx context.Context, author *authdomain.User, input dto.PostCreateInput) (*domain.Post, error) {
	now := time.Now()
	post := &domain.Post{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Content:   input.Content,
		Published: input.Published,
		AuthorID:  author.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Published {
		post.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update modifies a post. Only the author or an admin may write.
func (s *PostService) Update(ctx context.Context, actor *authdomain.User, id string, input dto.PostUpdateInput) (*domain.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, autherror.ErrPostNotFound
	}
	if post.AuthorID != actor.ID && !actor.HasRole(constant.RoleAdmin) {
		return nil, autherror.ErrPermissionDenied
	}

	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if input.Published != nil {
		wasPublished := post.Published
		post.Published = *input.Published
		if post.Published && !wasPublished {
			now := time.Now()
			post.PublishedAt = &now
		}
	}
	post.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, actor *authdomain.User, id string) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil {
		return autherror.ErrPostNotFound
	}
	if post.AuthorID != actor.ID && !actor.HasRole(constant.RoleAdmin) {
		return autherror.ErrPermissionDenied
	}

	return s.repo.Delete(ctx, id)
}
