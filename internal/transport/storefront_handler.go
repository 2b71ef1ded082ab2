package transport

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/cartapi"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/offlinecart"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/variant"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ToggleRequest represents a facet toggle on top of the current selection
type ToggleRequest struct {
	Size  string `json:"size"`
	Color string `json:"color"`
	Kind  string `json:"kind" validate:"required,oneof=size color"`
	Value string `json:"value" validate:"required"`
}

// SelectionCartRequest adds the variant resolved from the facets to the cart
type SelectionCartRequest struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity" validate:"omitempty,gt=0"`
}

// MutationResponse reports how a cart mutation was handled
type MutationResponse struct {
	Outcome   domain.MutationOutcome `json:"outcome"`
	Intent    *domain.Intent         `json:"intent,omitempty"`
	Selection *service.SelectionView `json:"selection,omitempty"`
}

// ProductListResponse is one page of the catalog
type ProductListResponse struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// NotificationSource exposes recent user notifications
type NotificationSource interface {
	Recent() []offlinecart.Notification
}

// StorefrontHandler handles HTTP requests for catalog and cart operations
type StorefrontHandler struct {
	storefront    service.StorefrontService
	notifications NotificationSource
	logger        *zap.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(storefront service.StorefrontService, notifications NotificationSource, logger *zap.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		storefront:    storefront,
		notifications: notifications,
		logger:        logger,
	}
}

// RegisterRoutes registers all storefront routes
func (h *StorefrontHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Route("/{productID}", func(r chi.Router) {
				r.Get("/", h.GetProduct)
				r.Get("/selection", h.GetSelection)
				r.Post("/selection/toggle", h.ToggleSelection)
				r.Post("/cart", h.AddSelectionToCart)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddCartItem)
			r.Get("/offline-queue", h.GetOfflineQueue)
			r.Post("/offline-queue/replay", h.ReplayOfflineQueue)
		})

		r.Get("/notifications", h.GetNotifications)
	})
}

// ListProducts handles GET /api/products
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)
	if pageSize > 100 {
		pageSize = 100
	}
	sortOrder := repository.SortOrderDesc
	if r.URL.Query().Get("order") == "asc" {
		sortOrder = repository.SortOrderAsc
	}

	products, total, err := h.storefront.ListProducts(r.Context(), page, pageSize, r.URL.Query().Get("sort"), sortOrder)
	if err != nil {
		h.respondWithServiceError(w, "List products failed", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetProduct handles GET /api/products/{productID}
func (h *StorefrontHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.storefront.GetProduct(r.Context(), productID)
	if err != nil {
		h.respondWithServiceError(w, "Get product failed", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// GetSelection handles GET /api/products/{productID}/selection.
// Without size or color parameters the initial selection is returned.
func (h *StorefrontHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := service.SelectionRequest{
		Size:     q.Get("size"),
		Color:    q.Get("color"),
		Quantity: queryInt(r, "quantity", 0),
		Explicit: q.Has("size") || q.Has("color"),
	}

	view, err := h.storefront.Selection(r.Context(), productID, req)
	if err != nil {
		h.respondWithServiceError(w, "Resolve selection failed", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// ToggleSelection handles POST /api/products/{productID}/selection/toggle
func (h *StorefrontHandler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req ToggleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Toggle validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	current := service.SelectionRequest{Size: req.Size, Color: req.Color}
	view, err := h.storefront.ToggleOption(r.Context(), productID, current, variant.Kind(req.Kind), req.Value)
	if err != nil {
		h.respondWithServiceError(w, "Toggle selection failed", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// AddSelectionToCart handles POST /api/products/{productID}/cart
func (h *StorefrontHandler) AddSelectionToCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req SelectionCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Selection cart validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	outcome, view, err := h.storefront.AddSelectionToCart(r.Context(), productID, service.SelectionRequest{
		Size:     req.Size,
		Color:    req.Color,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.respondWithServiceError(w, "Add selection to cart failed", err)
		return
	}

	middleware.RespondWithJSON(w, statusFor(outcome), MutationResponse{Outcome: outcome, Selection: view})
}

// AddCartItem handles POST /api/cart/items
func (h *StorefrontHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var intent domain.Intent
	if err := middleware.DecodeAndValidate(r, &intent); err != nil {
		h.logger.Debug("Cart item validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	outcome, err := h.storefront.AddToCart(r.Context(), intent)
	if err != nil {
		h.respondWithServiceError(w, "Add cart item failed", err)
		return
	}

	middleware.RespondWithJSON(w, statusFor(outcome), MutationResponse{Outcome: outcome, Intent: &intent})
}

// GetCart handles GET /api/cart
func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.storefront.GetCart(r.Context())
	if err != nil {
		h.respondWithServiceError(w, "Get cart failed", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// GetOfflineQueue handles GET /api/cart/offline-queue
func (h *StorefrontHandler) GetOfflineQueue(w http.ResponseWriter, r *http.Request) {
	intents, err := h.storefront.PendingIntents(r.Context())
	if err != nil {
		h.respondWithServiceError(w, "Read offline queue failed", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"intents": intents,
		"count":   len(intents),
	})
}

// ReplayOfflineQueue handles POST /api/cart/offline-queue/replay
func (h *StorefrontHandler) ReplayOfflineQueue(w http.ResponseWriter, r *http.Request) {
	result, err := h.storefront.ReplayOffline(r.Context())
	if err != nil {
		h.respondWithServiceError(w, "Replay offline queue failed", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// GetNotifications handles GET /api/notifications
func (h *StorefrontHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": h.notifications.Recent(),
	})
}

func (h *StorefrontHandler) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondWithServiceError maps service errors onto HTTP statuses
func (h *StorefrontHandler) respondWithServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrVariantNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "variant not found")
	case errors.Is(err, variant.ErrNoVariantSelected):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, variant.ErrVariantUnavailable):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, variant.ErrInvalidQuantity), errors.Is(err, service.ErrInvalidFacet):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCartUnavailable):
		middleware.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, offlinecart.ErrReplayFailed):
		h.logger.Warn(msg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to replay offline cart items")
	case errors.Is(err, cartapi.ErrRejected):
		h.logger.Warn(msg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "cart service rejected the request")
	case errors.Is(err, cartapi.ErrUnreachable):
		h.logger.Warn(msg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "cart service is unreachable")
	default:
		h.logger.Error(msg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func statusFor(outcome domain.MutationOutcome) int {
	if outcome == domain.OutcomeQueuedOffline {
		return http.StatusAccepted
	}
	return http.StatusCreated
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
