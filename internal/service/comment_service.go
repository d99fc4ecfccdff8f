package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/database"
	"storefront/internal/domain"

	"github.com/google/uuid"
)

// CommentService defines the interface for the per-product comment/rating
// ledger. Only the original author may update or delete a comment.
type CommentService interface {
	Create(ctx context.Context, userID, productID uuid.UUID, content string, rating *int) (*domain.Comment, error)
	Update(ctx context.Context, commentID, actorID uuid.UUID, content string, rating *int) (*domain.Comment, error)
	Delete(ctx context.Context, commentID, actorID uuid.UUID) error
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]*domain.CommentView, error)
}

type commentService struct {
	txm     database.TxManager
	stores  Stores
	factory StoreFactory
	fanout  *Fanout
}

// NewCommentService creates a new instance of CommentService.
func NewCommentService(txm database.TxManager, stores Stores, factory StoreFactory, fanout *Fanout) CommentService {
	return &commentService{txm: txm, stores: stores, factory: factory, fanout: fanout}
}

func validateComment(content string, rating *int) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: comment content must not be empty", ErrValidation)
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	return nil
}

// Create persists the comment and, in the same transaction, notifies the
// product's owner.
func (s *commentService) Create(ctx context.Context, userID, productID uuid.UUID, content string, rating *int) (*domain.Comment, error) {
	if err := validateComment(content, rating); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Content:   content,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	}

	err := s.txm.InTx(ctx, database.DefaultTxOptions(), func(tx database.DBTX) error {
		stores := s.factory(tx)

		product, err := stores.Products.FindByID(ctx, productID)
		if err != nil {
			return err
		}

		if err := stores.Comments.Create(ctx, comment); err != nil {
			return err
		}

		return s.fanout.CommentPosted(ctx, stores.Notifications, product, userID)
	})
	if err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *commentService) Update(ctx context.Context, commentID, actorID uuid.UUID, content string, rating *int) (*domain.Comment, error) {
	if err := validateComment(content, rating); err != nil {
		return nil, err
	}

	comment, err := s.stores.Comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actorID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	comment.Content = content
	comment.Rating = rating
	comment.UpdatedAt = &now

	if err := s.stores.Comments.Update(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, commentID, actorID uuid.UUID) error {
	comment, err := s.stores.Comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		return ErrForbidden
	}

	return s.stores.Comments.Delete(ctx, commentID)
}

func (s *commentService) ListForProduct(ctx context.Context, productID uuid.UUID) ([]*domain.CommentView, error) {
	if _, err := s.stores.Products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.stores.Comments.ListByProduct(ctx, productID)
}
