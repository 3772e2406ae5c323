package article

import (
	"errors"
	"time"
)

// Article lifecycle states. Only published and approved articles are visible
// to search and the knowledge graph.
const (
	StatusDraft     = "draft"
	StatusApproved  = "approved"
	StatusPublished = "published"
)

// Sentinel errors returned by Store operations.
var (
	// ErrNotFound is returned when no article matches the given key.
	ErrNotFound = errors.New("article not found")

	// ErrDuplicate is returned when an insert collides with an existing
	// (category, slug) pair.
	ErrDuplicate = errors.New("article already exists")

	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("invalid article status")
)

// Article is one encyclopedia entry. Category and Slug are stored
// lower-case; Topic keeps the display casing.
type Article struct {
	ID         int64     `json:"id"`
	Category   string    `json:"category"`
	Topic      string    `json:"topic"`
	Slug       string    `json:"slug"`
	Markdown   string    `json:"markdown"`
	References []string  `json:"references"`
	Status     string    `json:"status"`
	Views      int64     `json:"views"`
	Version    int32     `json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Draft carries the fields of a new article before persistence.
type Draft struct {
	Category   string
	Topic      string
	Markdown   string
	References []string
	Status     string
}

// Version is one historical revision of an article.
type Version struct {
	ID         int64     `json:"id"`
	ArticleID  int64     `json:"articleId"`
	Markdown   string    `json:"markdown"`
	References []string  `json:"references"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	CreatedBy  string    `json:"createdBy"`
}

// Summary is the listing projection of an article, without the body.
type Summary struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Topic     string    `json:"topic"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	Views     int64     `json:"views"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func validStatus(status string) bool {
	switch status {
	case StatusDraft, StatusApproved, StatusPublished:
		return true
	}
	return false
}
