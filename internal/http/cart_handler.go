package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/cart-store/internal/domain"
	"github.com/fjod/go_cart/cart-store/internal/service"
)

type CartHandler struct {
	carts   *service.CartService
	timeout time.Duration
	logger  *zap.Logger
}

func NewCartHandler(carts *service.CartService, timeout time.Duration, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
		logger:  logger,
	}
}

type AddItemRequestDTO struct {
	Product  domain.Product `json:"product"`
	Quantity any            `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity any `json:"quantity"`
}

type CartResponse struct {
	Items []domain.LineItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
	Count int               `json:"count"`
}

func newCartResponse(store *service.Store) CartResponse {
	items := store.Items()
	if items == nil {
		items = []domain.LineItem{}
	}
	return CartResponse{
		Items: items,
		Total: domain.CartTotal(items),
		Count: domain.CartCount(items),
	}
}

type resolveFunc func(ctx context.Context, sessionID string) (*service.Store, error)

// store resolves the request's cart, answering the request itself when that is not possible.
// Requests that can only shrink the cart use Lookup so that empty sessions are not held in memory.
func (h *CartHandler) store(ctx context.Context, w http.ResponseWriter, resolve resolveFunc) (*service.Store, bool) {
	store, err := resolve(ctx, getSessionIDFromContext(ctx))
	if errors.Is(err, service.ErrInvalidSession) {
		respondError(w, h.logger, http.StatusUnauthorized, "missing_session", "missing shopping session")
		return nil, false
	}
	if err != nil {
		h.logger.Error("failed to resolve cart", zap.Error(err))
		respondError(w, h.logger, http.StatusInternalServerError, "internal_error", "internal server error")
		return nil, false
	}
	return store, true
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, ok := h.store(ctx, w, h.carts.Lookup)
	if !ok {
		return
	}
	respondJSON(w, h.logger, http.StatusOK, newCartResponse(store))
}

// AddItem adds a product to the cart. A product without an id leaves the cart unchanged and still
// answers with the current cart, mirroring the store's silent no-op.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store, ok := h.store(ctx, w, h.carts.Cart)
	if !ok {
		return
	}

	status := http.StatusOK
	if store.AddToCart(ctx, req.Product, addQuantity(req.Quantity)) {
		status = http.StatusCreated
	}
	respondJSON(w, h.logger, status, newCartResponse(store))
}

// UpdateQuantity overwrites a line item's quantity. A body without a quantity is a no-op; a
// quantity that is not a number or is below 1 removes the line item.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store, ok := h.store(ctx, w, h.carts.Lookup)
	if !ok {
		return
	}

	if quantity, present := domain.CoerceQuantity(req.Quantity); present {
		store.UpdateQuantity(ctx, chi.URLParam(r, "product_id"), quantity)
	}
	respondJSON(w, h.logger, http.StatusOK, newCartResponse(store))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, ok := h.store(ctx, w, h.carts.Lookup)
	if !ok {
		return
	}

	store.RemoveFromCart(ctx, chi.URLParam(r, "product_id"))
	respondJSON(w, h.logger, http.StatusOK, newCartResponse(store))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, ok := h.store(ctx, w, h.carts.Lookup)
	if !ok {
		return
	}

	store.ClearCart(ctx)
	respondJSON(w, h.logger, http.StatusOK, newCartResponse(store))
}

// addQuantity turns the optional quantity of an add request into a whole number of units.
// Absent and non-numeric values mean one unit; the store clamps the rest.
func addQuantity(v any) int {
	q, ok := domain.CoerceQuantity(v)
	if !ok || math.IsNaN(q) {
		return 1
	}
	if q >= float64(domain.MaxQuantity) {
		return domain.MaxQuantity
	}
	if q < 1 {
		return 1
	}
	return int(math.Floor(q))
}
