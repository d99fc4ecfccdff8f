package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderLineRequest is one requested (product, quantity) pair.
type OrderLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1,lte=999"`
}

// PlaceOrderRequest places an order for an explicit list of line items.
type PlaceOrderRequest struct {
	Email string             `json:"email" validate:"required,email"`
	Phone string             `json:"phone" validate:"required,e164"`
	Items []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}

// CheckoutRequest places an order from the caller's cart.
type CheckoutRequest struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,e164"`
}

// TransitionRequest moves an order to a new status.
type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderHandler handles HTTP requests for the order engine.
type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// RegisterRoutes registers order routes; all require an identity.
func (h *OrderHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.Place)
		r.Post("/checkout", h.Checkout)
		r.Get("/", h.ListOwn)
		r.Get("/received", h.ListReceived)
		r.Get("/{id}", h.Get)
		r.Put("/{id}/status", h.Transition)
	})
}

// Place converts an explicit item list into a committed order.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFor(r)

	var req PlaceOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	svcReq := service.PlaceOrderRequest{
		BuyerID: actor.UserID,
		Email:   req.Email,
		Phone:   req.Phone,
	}
	for _, line := range req.Items {
		svcReq.Items = append(svcReq.Items, service.LineItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	conf, err := h.orders.PlaceOrder(r.Context(), svcReq)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, conf)
}

// Checkout places an order from the caller's cart and clears it.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFor(r)

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	conf, err := h.orders.PlaceOrderFromCart(r.Context(), actor.UserID, req.Email, req.Phone)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, conf)
}

func (h *OrderHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFor(r)

	orders, err := h.orders.ListOrders(r.Context(), actor.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// ListReceived is the seller view: orders containing at least one product
// the caller owns.
func (h *OrderHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFor(r)

	orders, err := h.orders.ListReceivedOrders(r.Context(), actor.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFor(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id, actor.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Transition drives the order lifecycle.
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFor(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req TransitionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	order, err := h.orders.TransitionStatus(r.Context(), id, domain.OrderStatus(req.Status), actor.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}
