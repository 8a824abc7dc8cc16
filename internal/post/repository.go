package post

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository handles post data operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new post repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new post and returns the stored record.
func (r *Repository) Create(ctx context.Context, authorID int, title, body string) (*Post, error) {
	var post Post
	query := `INSERT INTO posts (author_id, title, body, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())
			  RETURNING id, author_id, title, body, created_at, updated_at`

	err := r.db.GetContext(ctx, &post, query, authorID, title, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return &post, nil
}

// FindByID finds a post by ID
func (r *Repository) FindByID(ctx context.Context, id int) (*Post, error) {
	var post Post
	query := `SELECT id, author_id, title, body, created_at, updated_at
			  FROM posts
			  WHERE id = $1`

	err := r.db.GetContext(ctx, &post, query, id)
	if err == sql.ErrNoRows {
		return nil, nil // Post not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	return &post, nil
}

// List returns posts in reverse creation order.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Post, error) {
	var posts []Post
	query := `SELECT id, author_id, title, body, created_at, updated_at
			  FROM posts
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &posts, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

// Update changes a post's title and body.
func (r *Repository) Update(ctx context.Context, id int, title, body string) (*Post, error) {
	var post Post
	query := `UPDATE posts SET title = $2, body = $3, updated_at = NOW()
			  WHERE id = $1
			  RETURNING id, author_id, title, body, created_at, updated_at`

	err := r.db.GetContext(ctx, &post, query, id, title, body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return &post, nil
}

// Delete removes a post
func (r *Repository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM posts WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
