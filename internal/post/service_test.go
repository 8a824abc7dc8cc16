package post

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/inkwell-labs/inkwell/pkg/errors"
)

type fakePostRepo struct {
	nextID int
	posts  map[int]*Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{nextID: 1, posts: make(map[int]*Post)}
}

func (r *fakePostRepo) Create(ctx context.Context, authorID int, title, body string) (*Post, error) {
	post := &Post{ID: r.nextID, AuthorID: authorID, Title: title, Body: body}
	r.posts[post.ID] = post
	r.nextID++
	return post, nil
}

func (r *fakePostRepo) FindByID(ctx context.Context, id int) (*Post, error) {
	return r.posts[id], nil
}

func (r *fakePostRepo) List(ctx context.Context, limit, offset int) ([]Post, error) {
	out := make([]Post, 0, len(r.posts))
	for _, post := range r.posts {
		out = append(out, *post)
	}
	return out, nil
}

func (r *fakePostRepo) Update(ctx context.Context, id int, title, body string) (*Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	post.Title = title
	post.Body = body
	return post, nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id int) error {
	delete(r.posts, id)
	return nil
}

func TestService_GetMissing(t *testing.T) {
	service := NewService(newFakePostRepo())

	if _, err := service.Get(context.Background(), 99); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestService_UpdateOwnership(t *testing.T) {
	repo := newFakePostRepo()
	service := NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, 1, "title", "body")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// Another user must not be able to edit it.
	if _, err := service.Update(ctx, 2, created.ID, "hijacked", "body"); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}

	updated, err := service.Update(ctx, 1, created.ID, "new title", "new body")
	if err != nil {
		t.Fatalf("Update() by author failed: %v", err)
	}
	if updated.Title != "new title" {
		t.Errorf("Title = %q, want %q", updated.Title, "new title")
	}
}

func TestService_DeleteOwnership(t *testing.T) {
	repo := newFakePostRepo()
	service := NewService(repo)
	ctx := context.Background()

	created, _ := service.Create(ctx, 1, "title", "body")

	if err := service.Delete(ctx, 2, created.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}

	if err := service.Delete(ctx, 1, created.ID); err != nil {
		t.Fatalf("Delete() by author failed: %v", err)
	}

	if _, err := service.Get(ctx, created.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("error after delete = %v, want ErrNotFound", err)
	}
}

func TestService_ListClampsPaging(t *testing.T) {
	repo := newFakePostRepo()
	service := NewService(repo)
	ctx := context.Background()

	if _, err := service.List(ctx, -5, -1); err != nil {
		t.Fatalf("List() with bad paging failed: %v", err)
	}
	if _, err := service.List(ctx, 1000, 0); err != nil {
		t.Fatalf("List() with oversized limit failed: %v", err)
	}
}
