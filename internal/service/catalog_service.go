package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogService defines the interface for product catalog logic. Stock is
// read here but only ever adjusted by the order engine.
type CatalogService interface {
	Create(ctx context.Context, ownerID uuid.UUID, name, description, imageURL string, price decimal.Decimal, stock int) (*domain.Product, error)
	Update(ctx context.Context, productID, actorID uuid.UUID, name, description, imageURL string, price decimal.Decimal, stock int) (*domain.Product, error)
	Delete(ctx context.Context, productID, actorID uuid.UUID) error
	Get(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
}

type catalogService struct {
	products repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(products repository.ProductRepository) CatalogService {
	return &catalogService{products: products}
}

func (s *catalogService) Create(ctx context.Context, ownerID uuid.UUID, name, description, imageURL string, price decimal.Decimal, stock int) (*domain.Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: product name must not be empty", ErrValidation)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		ImageURL:    imageURL,
		OwnerID:     &ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogService) Update(ctx context.Context, productID, actorID uuid.UUID, name, description, imageURL string, price decimal.Decimal, stock int) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.OwnedBy(actorID) {
		return nil, ErrForbidden
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}

	product.Name = name
	product.Description = description
	product.ImageURL = imageURL
	product.Price = price
	product.Stock = stock
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogService) Delete(ctx context.Context, productID, actorID uuid.UUID) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if !product.OwnedBy(actorID) {
		return ErrForbidden
	}

	return s.products.Delete(ctx, productID)
}

func (s *catalogService) Get(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	return s.products.FindByID(ctx, productID)
}

func (s *catalogService) List(ctx context.Context, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.products.List(ctx, page, pageSize, sortBy, sortOrder)
}

func (s *catalogService) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.products.Search(ctx, query, page, pageSize)
}
