package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/database"
	"storefront/internal/domain"

	"github.com/google/uuid"
)

var ErrCommentNotFound = errors.New("comment not found")

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	// ListByProduct returns comments newest first, joined with the author's
	// display name only; credential fields never leave the users table.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.CommentView, error)
}

type commentRepository struct {
	db database.DBTX
}

// NewCommentRepository creates a new instance of CommentRepository.
func NewCommentRepository(db database.DBTX) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, user_id, product_id, content, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		comment.ID,
		comment.UserID,
		comment.ProductID,
		comment.Content,
		comment.Rating,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	query := `
		UPDATE comments
		SET content = $2, rating = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, comment.ID, comment.Content, comment.Rating, comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCommentNotFound
	}

	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCommentNotFound
	}

	return nil
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := `
		SELECT id, user_id, product_id, content, rating, created_at, updated_at
		FROM comments
		WHERE id = $1
	`

	comment := &domain.Comment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.UserID,
		&comment.ProductID,
		&comment.Content,
		&comment.Rating,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment by id: %w", err)
	}

	return comment, nil
}

func (r *commentRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.CommentView, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, c.content, c.rating, c.created_at, c.updated_at,
		       u.username,
		       EXISTS (
		           SELECT 1
		           FROM orders o
		           JOIN order_items oi ON oi.order_id = o.id
		           WHERE o.user_id = c.user_id AND oi.product_id = c.product_id AND o.status <> $2
		       ) AS verified_purchase
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.product_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, productID, domain.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	views := []*domain.CommentView{}
	for rows.Next() {
		view := &domain.CommentView{}
		err := rows.Scan(
			&view.ID,
			&view.UserID,
			&view.ProductID,
			&view.Content,
			&view.Rating,
			&view.CreatedAt,
			&view.UpdatedAt,
			&view.AuthorName,
			&view.VerifiedPurchase,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return views, nil
}
