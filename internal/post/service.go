package post

import (
	"context"

	apperrors "github.com/inkwell-labs/inkwell/pkg/errors"
)

// PostRepository is the storage boundary the service depends on.
type PostRepository interface {
	Create(ctx context.Context, authorID int, title, body string) (*Post, error)
	FindByID(ctx context.Context, id int) (*Post, error)
	List(ctx context.Context, limit, offset int) ([]Post, error)
	Update(ctx context.Context, id int, title, body string) (*Post, error)
	Delete(ctx context.Context, id int) error
}

// Service enforces post business rules: only the author may change or
// remove a post.
type Service struct {
	posts PostRepository
}

// NewService creates a new post service
func NewService(posts PostRepository) *Service {
	return &Service{posts: posts}
}

// Create publishes a new post by the given author.
func (s *Service) Create(ctx context.Context, authorID int, title, body string) (*Post, error) {
	return s.posts.Create(ctx, authorID, title, body)
}

// Get returns a post by id.
func (s *Service) Get(ctx context.Context, id int) (*Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.ErrNotFound
	}
	return post, nil
}

// List returns a page of posts.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.posts.List(ctx, limit, offset)
}

// Update edits a post. Fails with ErrForbidden unless requesterID is the
// post's author.
func (s *Service) Update(ctx context.Context, requesterID, id int, title, body string) (*Post, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != requesterID {
		return nil, apperrors.ErrForbidden
	}

	updated, err := s.posts.Update(ctx, id, title, body)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.ErrNotFound
	}
	return updated, nil
}

// Delete removes a post. Same ownership rule as Update.
func (s *Service) Delete(ctx context.Context, requesterID, id int) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.AuthorID != requesterID {
		return apperrors.ErrForbidden
	}

	return s.posts.Delete(ctx, id)
}
