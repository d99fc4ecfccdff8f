package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartView is a user's cart with per-line subtotals recomputed from current
// catalog prices.
type CartView struct {
	Lines []*domain.CartLine `json:"lines"`
	Total decimal.Decimal    `json:"total"`
}

// CartService defines the interface for cart manipulation.
type CartService interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	UpdateQuantity(ctx context.Context, itemID, userID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, itemID, userID uuid.UUID) error
	Get(ctx context.Context, userID uuid.UUID) (*CartView, error)
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

// NewCartService creates a new instance of CartService.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository) CartService {
	return &cartService{carts: carts, products: products}
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	// The product must exist; stock is not checked here, only at checkout.
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return err
	}

	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}
	return s.carts.Upsert(ctx, item)
}

func (s *cartService) UpdateQuantity(ctx context.Context, itemID, userID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	return s.carts.UpdateQuantity(ctx, itemID, userID, quantity)
}

func (s *cartService) RemoveItem(ctx context.Context, itemID, userID uuid.UUID) error {
	return s.carts.Delete(ctx, itemID, userID)
}

// Get returns the cart with subtotals derived from the products' current
// prices, so lines track catalog price changes.
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	lines, err := s.carts.ListWithProducts(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, line := range lines {
		line.Subtotal = line.Product.Price.Mul(decimal.NewFromInt(int64(line.Item.Quantity)))
		total = total.Add(line.Subtotal)
	}

	return &CartView{Lines: lines, Total: total}, nil
}
