package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront/internal/database"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Quantity bounds for a single order line.
const (
	MinLineQuantity = 1
	MaxLineQuantity = 999
)

// LineItem is a requested (product, quantity) pair.
type LineItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderRequest carries everything needed to place an order.
type PlaceOrderRequest struct {
	BuyerID uuid.UUID
	Email   string
	Phone   string
	Items   []LineItem
}

// PurchasedItem is one confirmed line of a placed order.
type PurchasedItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// OrderConfirmation is returned on successful placement.
type OrderConfirmation struct {
	OrderID   uuid.UUID       `json:"order_id"`
	BuyerID   uuid.UUID       `json:"buyer_id"`
	OrderedAt time.Time       `json:"ordered_at"`
	Total     decimal.Decimal `json:"total"`
	Items     []PurchasedItem `json:"items"`
}

// OrderService is the order engine: it validates requested line items
// against the catalog, commits stock decrements and the order atomically,
// and drives status transitions over the order lifecycle.
type OrderService interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderConfirmation, error)
	PlaceOrderFromCart(ctx context.Context, buyerID uuid.UUID, email, phone string) (*OrderConfirmation, error)
	TransitionStatus(ctx context.Context, orderID uuid.UUID, newStatus domain.OrderStatus, actorID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListReceivedOrders(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error)
	GetOrder(ctx context.Context, orderID, actorID uuid.UUID) (*domain.Order, error)
}

type orderService struct {
	txm      database.TxManager
	stores   Stores
	factory  StoreFactory
	fanout   *Fanout
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOrderService creates a new instance of OrderService. stores is bound to
// the connection pool for read paths; factory builds transaction-scoped
// bundles for the commit paths.
func NewOrderService(txm database.TxManager, stores Stores, factory StoreFactory, fanout *Fanout, logger *zap.Logger) OrderService {
	return &orderService{
		txm:      txm,
		stores:   stores,
		factory:  factory,
		fanout:   fanout,
		validate: validator.New(),
		logger:   logger,
	}
}

// validatePlaceOrder checks every precondition before any mutation.
func (s *orderService) validatePlaceOrder(req PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	if err := s.validate.Var(req.Email, "required,email"); err != nil {
		return fmt.Errorf("%w: malformed email", ErrValidation)
	}
	if err := s.validate.Var(req.Phone, "required,e164"); err != nil {
		return fmt.Errorf("%w: malformed phone number", ErrValidation)
	}
	for _, item := range req.Items {
		if item.Quantity < MinLineQuantity || item.Quantity > MaxLineQuantity {
			return fmt.Errorf("%w: quantity must be between %d and %d", ErrValidation, MinLineQuantity, MaxLineQuantity)
		}
	}
	return nil
}

// mergeLines combines duplicate product lines and returns them sorted by
// product id, so row locks are always taken in a stable order.
func mergeLines(items []LineItem) []LineItem {
	byProduct := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		byProduct[item.ProductID] += item.Quantity
	}

	merged := make([]LineItem, 0, len(byProduct))
	for id, qty := range byProduct {
		merged = append(merged, LineItem{ProductID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ProductID.String() < merged[j].ProductID.String()
	})
	return merged
}

func (s *orderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderConfirmation, error) {
	if err := s.validatePlaceOrder(req); err != nil {
		return nil, err
	}

	var order *domain.Order
	err := s.txm.InTx(ctx, database.SerializableTxOptions(), func(tx database.DBTX) error {
		stores := s.factory(tx)
		var err error
		order, err = s.placeInTx(ctx, stores, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("buyer_id", order.UserID.String()),
		zap.String("total", order.TotalAmount.String()),
		zap.Int("items", len(order.Items)),
	)

	return confirmationFor(order), nil
}

// PlaceOrderFromCart converts the buyer's cart into an order and clears the
// cart, all in the placement transaction so the cart survives a failed
// checkout untouched.
func (s *orderService) PlaceOrderFromCart(ctx context.Context, buyerID uuid.UUID, email, phone string) (*OrderConfirmation, error) {
	var order *domain.Order
	err := s.txm.InTx(ctx, database.SerializableTxOptions(), func(tx database.DBTX) error {
		stores := s.factory(tx)

		cartItems, err := stores.Carts.ListByUser(ctx, buyerID)
		if err != nil {
			return err
		}

		req := PlaceOrderRequest{BuyerID: buyerID, Email: email, Phone: phone}
		for _, item := range cartItems {
			req.Items = append(req.Items, LineItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		if err := s.validatePlaceOrder(req); err != nil {
			return err
		}

		order, err = s.placeInTx(ctx, stores, req)
		if err != nil {
			return err
		}

		return stores.Carts.DeleteByUser(ctx, buyerID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed from cart",
		zap.String("order_id", order.ID.String()),
		zap.String("buyer_id", buyerID.String()),
	)

	return confirmationFor(order), nil
}

// placeInTx is the atomic core: lock products in a stable order, check and
// decrement stock, snapshot prices, persist the order with its items, and
// fan out seller notifications. Any failure rolls the whole thing back.
func (s *orderService) placeInTx(ctx context.Context, stores Stores, req PlaceOrderRequest) (*domain.Order, error) {
	lines := mergeLines(req.Items)

	// Merging can push a per-product quantity past the cap even when every
	// raw line was within bounds; the committed order item must still honor
	// the 1..999 range the schema enforces.
	for _, line := range lines {
		if line.Quantity < MinLineQuantity || line.Quantity > MaxLineQuantity {
			return nil, fmt.Errorf("%w: quantity must be between %d and %d", ErrValidation, MinLineQuantity, MaxLineQuantity)
		}
	}

	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    req.BuyerID,
		Status:    domain.OrderStatusPending,
		Email:     req.Email,
		Phone:     req.Phone,
		OrderedAt: time.Now().UTC(),
	}

	total := decimal.Zero
	sellerSet := make(map[uuid.UUID]struct{})

	for _, line := range lines {
		product, err := stores.Products.LockForUpdate(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < line.Quantity {
			return nil, repository.ErrInsufficientStock
		}

		item := domain.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       product.ID,
			ProductName:     product.Name,
			PriceAtPurchase: product.Price,
			Quantity:        line.Quantity,
		}
		order.Items = append(order.Items, item)
		total = total.Add(item.Subtotal())

		if product.OwnerID != nil {
			sellerSet[*product.OwnerID] = struct{}{}
		}
	}
	order.TotalAmount = total

	for _, line := range lines {
		// Conditional decrement backs up the locked check; zero rows means a
		// concurrent writer got there first and the order must not commit.
		if err := stores.Products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
	}

	if err := stores.Orders.Create(ctx, order); err != nil {
		return nil, err
	}

	sellers := make([]uuid.UUID, 0, len(sellerSet))
	for id := range sellerSet {
		sellers = append(sellers, id)
	}
	if err := s.fanout.OrderPlaced(ctx, stores.Notifications, order, sellers); err != nil {
		return nil, err
	}

	return order, nil
}

func confirmationFor(order *domain.Order) *OrderConfirmation {
	conf := &OrderConfirmation{
		OrderID:   order.ID,
		BuyerID:   order.UserID,
		OrderedAt: order.OrderedAt,
		Total:     order.TotalAmount,
	}
	for _, item := range order.Items {
		conf.Items = append(conf.Items, PurchasedItem{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			UnitPrice: item.PriceAtPurchase,
			Quantity:  item.Quantity,
		})
	}
	return conf
}

// TransitionStatus moves an order along its lifecycle. Only the buyer or a
// seller of at least one item may transition; cancellation restores the
// stock recorded on the order items.
func (s *orderService) TransitionStatus(ctx context.Context, orderID uuid.UUID, newStatus domain.OrderStatus, actorID uuid.UUID) (*domain.Order, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	var updated *domain.Order
	err := s.txm.InTx(ctx, database.SerializableTxOptions(), func(tx database.DBTX) error {
		stores := s.factory(tx)

		order, err := stores.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if order.UserID != actorID {
			owns, err := stores.Orders.OwnsAnyItemIn(ctx, orderID, actorID)
			if err != nil {
				return err
			}
			if !owns {
				return ErrForbidden
			}
		}

		if !order.Status.CanTransitionTo(newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
		}

		if newStatus == domain.OrderStatusCancelled {
			// Cancellation is the only operation that returns inventory;
			// restore exactly the quantities recorded at purchase.
			for _, item := range order.Items {
				if err := stores.Products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := stores.Orders.UpdateStatus(ctx, orderID, newStatus); err != nil {
			return err
		}
		order.Status = newStatus

		if err := s.fanout.OrderStatusChanged(ctx, stores.Notifications, order); err != nil {
			return err
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(newStatus)),
		zap.String("actor_id", actorID.String()),
	)

	return updated, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.stores.Orders.ListByBuyer(ctx, userID)
}

func (s *orderService) ListReceivedOrders(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error) {
	return s.stores.Orders.ListBySeller(ctx, sellerID)
}

// GetOrder returns the order to its buyer or to a seller of one of its
// items; anyone else is refused.
func (s *orderService) GetOrder(ctx context.Context, orderID, actorID uuid.UUID) (*domain.Order, error) {
	order, err := s.stores.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != actorID {
		owns, err := s.stores.Orders.OwnsAnyItemIn(ctx, orderID, actorID)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, ErrForbidden
		}
	}

	return order, nil
}
