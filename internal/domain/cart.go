package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem links a user to a product with a desired quantity. The subtotal is
// always derived from the product's current price and never persisted, so it
// tracks catalog price changes between visits.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CartLine is a cart item joined with its product for display.
type CartLine struct {
	Item     CartItem        `json:"item"`
	Product  Product         `json:"product"`
	Subtotal decimal.Decimal `json:"subtotal"`
}
