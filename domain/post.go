package domain

import "time"

type Post struct {
	ID              int64  `json:"id"`
	AuthorID        int64  `json:"author_id"`
	AuthorDisplayID string `json:"author_display_id"`
	Title           string `json:"title"`
	Content         string `json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

type PostPage struct {
	Posts []*Post
	Total int64
	Page  int
	Limit int
}

type PostRepo interface {
	Create(post *Post) (*Post, error)
	GetByID(postID int64) (*Post, error)
	List(page, limit int) ([]*Post, int64, error)
	Delete(postID int64) error
}

type PostUseCase interface {
	Create(author *TokenClaims, title, content string) (*Post, error)
	List(page, limit int) (*PostPage, error)
	Delete(requester *TokenClaims, postID int64) error
}
