package transport

import (
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest is the create/update payload. Price is a decimal string.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	ImageURL    string          `json:"image_url"`
}

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(catalog service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes registers catalog routes; browsing is public, mutation
// requires an identity (the creator becomes the owner).
func (h *ProductHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List handles both plain listing and search via the q parameter.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	if search := q.Get("q"); search != "" {
		items, total, err := h.catalog.Search(r.Context(), search, page, pageSize)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		respondProductList(w, items, total, page, pageSize)
		return
	}

	sortOrder := repository.SortOrderDesc
	if q.Get("sort_order") == "asc" {
		sortOrder = repository.SortOrderAsc
	}

	items, total, err := h.catalog.List(r.Context(), page, pageSize, q.Get("sort_by"), sortOrder)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	respondProductList(w, items, total, page, pageSize)
}

func respondProductList[T any](w http.ResponseWriter, items []T, total, page, pageSize int) {
	payload := map[string]any{
		"products":  items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	}
	middleware.RespondWithJSON(w, http.StatusOK, payload)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFor(r)

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	product, err := h.catalog.Create(r.Context(), actor.UserID, req.Name, req.Description, req.ImageURL, req.Price, req.Stock)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("owner_id", actor.UserID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFor(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	product, err := h.catalog.Update(r.Context(), id, actor.UserID, req.Name, req.Description, req.ImageURL, req.Price, req.Stock)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFor(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalog.Delete(r.Context(), id, actor.UserID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
