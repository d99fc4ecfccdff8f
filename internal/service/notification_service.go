package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fanout creates notification records in response to domain events. Its
// methods take the repository explicitly so callers can pass a
// transaction-scoped instance: fanout rows commit together with the event
// that triggered them, never silently dropped.
type Fanout struct {
	logger *zap.Logger
}

// NewFanout creates a new Fanout.
func NewFanout(logger *zap.Logger) *Fanout {
	return &Fanout{logger: logger}
}

// OrderPlaced notifies each distinct seller among the order's items exactly
// once, regardless of how many lines they sold.
func (f *Fanout) OrderPlaced(ctx context.Context, notifications repository.NotificationRepository, order *domain.Order, sellers []uuid.UUID) error {
	itemCount := 0
	for _, item := range order.Items {
		itemCount += item.Quantity
	}

	buyerID := order.UserID
	for _, sellerID := range sellers {
		n := &domain.Notification{
			ID:            uuid.New(),
			UserID:        sellerID,
			Type:          domain.NotificationTypeNewOrder,
			Message:       fmt.Sprintf("New order received: %d item(s), total %s", itemCount, order.TotalAmount.StringFixed(2)),
			OrderID:       &order.ID,
			RelatedUserID: &buyerID,
			Link:          fmt.Sprintf("/orders/%s", order.ID),
			CreatedAt:     time.Now().UTC(),
		}
		if err := notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("fan out new_order notification: %w", err)
		}
	}

	f.logger.Debug("Fanned out order placement",
		zap.String("order_id", order.ID.String()),
		zap.Int("sellers", len(sellers)),
	)

	return nil
}

// OrderStatusChanged notifies the buyer about the order's new status.
func (f *Fanout) OrderStatusChanged(ctx context.Context, notifications repository.NotificationRepository, order *domain.Order) error {
	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    order.UserID,
		Type:      domain.NotificationTypeStatusChange,
		Message:   fmt.Sprintf("Your order is now %s", order.Status),
		OrderID:   &order.ID,
		Link:      fmt.Sprintf("/orders/%s", order.ID),
		CreatedAt: time.Now().UTC(),
	}
	if err := notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("fan out status_change notification: %w", err)
	}
	return nil
}

// CommentPosted notifies the product's owner that someone commented on
// their product. Self-comments produce no notification.
func (f *Fanout) CommentPosted(ctx context.Context, notifications repository.NotificationRepository, product *domain.Product, commenterID uuid.UUID) error {
	if product.OwnerID == nil || *product.OwnerID == commenterID {
		return nil
	}

	n := &domain.Notification{
		ID:            uuid.New(),
		UserID:        *product.OwnerID,
		Type:          domain.NotificationTypeNewComment,
		Message:       fmt.Sprintf("New comment on %s", product.Name),
		RelatedUserID: &commenterID,
		Link:          fmt.Sprintf("/products/%s", product.ID),
		CreatedAt:     time.Now().UTC(),
	}
	if err := notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("fan out new_comment notification: %w", err)
	}
	return nil
}

// NotificationList is the read projection: notifications newest first plus
// the derived unread count.
type NotificationList struct {
	Notifications []*domain.Notification `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

// NotificationService defines the interface for the notification read/ack
// surface.
type NotificationService interface {
	ListForUser(ctx context.Context, userID uuid.UUID) (*NotificationList, error)
	MarkAsRead(ctx context.Context, notificationID, actorID uuid.UUID) error
}

type notificationService struct {
	notifications repository.NotificationRepository
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(notifications repository.NotificationRepository) NotificationService {
	return &notificationService{notifications: notifications}
}

func (s *notificationService) ListForUser(ctx context.Context, userID uuid.UUID) (*NotificationList, error) {
	list, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	unread, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &NotificationList{Notifications: list, UnreadCount: unread}, nil
}

// MarkAsRead sets the read flag. Only the target user may ack; re-acking an
// already-read notification succeeds silently.
func (s *notificationService) MarkAsRead(ctx context.Context, notificationID, actorID uuid.UUID) error {
	n, err := s.notifications.FindByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != actorID {
		return ErrForbidden
	}
	if n.IsRead {
		return nil
	}

	return s.notifications.MarkRead(ctx, notificationID)
}
