package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CommentRequest is the create/update payload for a comment. Rating is
// optional; when present it must be 1..5.
type CommentRequest struct {
	Content string `json:"content" validate:"required"`
	Rating  *int   `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
}

// CommentHandler handles HTTP requests for product comments.
type CommentHandler struct {
	comments service.CommentService
	logger   *zap.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(comments service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// RegisterRoutes registers comment routes; listing is public, mutation is
// author-only.
func (h *CommentHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/products/{productID}/comments", func(r chi.Router) {
		r.Get("/", h.ListForProduct)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.Create)
		})
	})

	r.Route("/api/comments", func(r chi.Router) {
		r.Use(requireAuth)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *CommentHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuidParam(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	comments, err := h.comments.ListForProduct(r.Context(), productID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFor(r)

	productID, err := uuidParam(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req CommentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), actor.UserID, productID, req.Content, req.Rating)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFor(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	var req CommentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	comment, err := h.comments.Update(r.Context(), id, actor.UserID, req.Content, req.Rating)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFor(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := h.comments.Delete(r.Context(), id, actor.UserID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
