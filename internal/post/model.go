package post

import (
	"time"
)

// Post represents the posts table
type Post struct {
	ID        int       `db:"id" json:"id"`
	AuthorID  int       `db:"author_id" json:"author_id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
