package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification types created by the fanout service.
const (
	NotificationTypeNewOrder     = "new_order"
	NotificationTypeStatusChange = "status_change"
	NotificationTypeNewComment   = "new_comment"
)

// Notification targets a single user. OrderID and RelatedUserID are weak
// references used for display; the notification itself is never deleted by
// normal flow, only marked read.
type Notification struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	Type          string     `json:"type" db:"type"`
	Message       string     `json:"message" db:"message"`
	OrderID       *uuid.UUID `json:"order_id,omitempty" db:"order_id"`
	RelatedUserID *uuid.UUID `json:"related_user_id,omitempty" db:"related_user_id"`
	IsRead        bool       `json:"is_read" db:"is_read"`
	Link          string     `json:"link,omitempty" db:"link"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
