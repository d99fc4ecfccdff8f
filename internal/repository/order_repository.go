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

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order data access. Creation and
// status updates are expected to run inside the transaction the order engine
// drives; construct a tx-scoped instance with NewOrderRepository(tx).
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByBuyer(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error

	// SellerIDs returns the distinct owners of the products in the order,
	// excluding platform-owned (ownerless) products.
	SellerIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error)
	// OwnsAnyItemIn reports whether userID owns at least one product
	// referenced by the order (the derived seller capability).
	OwnsAnyItemIn(ctx context.Context, orderID, userID uuid.UUID) (bool, error)
	// HasPurchased reports whether the user has a non-cancelled order
	// containing the product.
	HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type orderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db database.DBTX) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and its items. Items are the order's exclusive
// property; the FK cascades deletion.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, user_id, status, total_amount, email, phone, ordered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.UserID,
		order.Status,
		order.TotalAmount,
		order.Email,
		order.Phone,
		order.OrderedAt,
	)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, product_name, price_at_purchase, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, item := range order.Items {
		_, err := r.db.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.ProductName,
			item.PriceAtPurchase,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, user_id, status, total_amount, email, phone, ordered_at`

func scanOrder(scan func(dest ...any) error) (*domain.Order, error) {
	order := &domain.Order{}
	err := scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.Email,
		&order.Phone,
		&order.OrderedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order by id: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT id, order_id, product_id, product_name, price_at_purchase, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name, id
	`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.PriceAtPurchase, &item.Quantity)
		if err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *orderRepository) ListByBuyer(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE user_id = $1
		ORDER BY ordered_at DESC, id DESC
	`, orderColumns)

	return r.collectOrders(ctx, query, userID)
}

// ListBySeller returns orders containing at least one product the user owns
// ("received orders").
func (r *orderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders o
		WHERE EXISTS (
			SELECT 1
			FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			WHERE oi.order_id = o.id AND p.owner_id = $1
		)
		ORDER BY ordered_at DESC, id DESC
	`, orderColumns)

	return r.collectOrders(ctx, query, sellerID)
}

func (r *orderRepository) collectOrders(ctx context.Context, query string, arg any) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) SellerIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT p.owner_id
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1 AND p.owner_id IS NOT NULL
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order sellers: %w", err)
	}
	defer rows.Close()

	var sellers []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seller id: %w", err)
		}
		sellers = append(sellers, id)
	}
	return sellers, rows.Err()
}

func (r *orderRepository) OwnsAnyItemIn(ctx context.Context, orderID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			WHERE oi.order_id = $1 AND p.owner_id = $2
		)
	`

	var owns bool
	if err := r.db.QueryRowContext(ctx, query, orderID, userID).Scan(&owns); err != nil {
		return false, fmt.Errorf("check order ownership: %w", err)
	}
	return owns, nil
}

func (r *orderRepository) HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status <> $3
		)
	`

	var purchased bool
	if err := r.db.QueryRowContext(ctx, query, userID, productID, domain.OrderStatusCancelled).Scan(&purchased); err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return purchased, nil
}
