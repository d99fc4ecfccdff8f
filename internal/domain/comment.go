package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a per-product review by a user. Rating is optional; UpdatedAt
// is set only when content or rating change after creation.
type Comment struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	ProductID uuid.UUID  `json:"product_id" db:"product_id"`
	Content   string     `json:"content" db:"content"`
	Rating    *int       `json:"rating,omitempty" db:"rating"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// CommentView is a comment joined with its author's display name for product
// pages. VerifiedPurchase reports whether the author has a non-cancelled
// order containing the product.
type CommentView struct {
	Comment
	AuthorName       string `json:"author_name"`
	VerifiedPurchase bool   `json:"verified_purchase"`
}
