package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/cart-store/internal/domain"
	"github.com/fjod/go_cart/cart-store/internal/service"
)

type CheckoutInfoHandler struct {
	checkout *service.CheckoutInfoService
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCheckoutInfoHandler(checkout *service.CheckoutInfoService, timeout time.Duration, logger *zap.Logger) *CheckoutInfoHandler {
	return &CheckoutInfoHandler{
		checkout: checkout,
		timeout:  timeout,
		logger:   logger,
	}
}

func (h *CheckoutInfoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	info, ok := h.checkout.Load(ctx, getSessionIDFromContext(ctx))
	if !ok {
		respondError(w, h.logger, http.StatusNotFound, "not_found", "no saved checkout info")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, info)
}

func (h *CheckoutInfoHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var info domain.CheckoutInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.checkout.Save(ctx, getSessionIDFromContext(ctx), info); err != nil {
		h.handleError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, info)
}

func (h *CheckoutInfoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.checkout.Clear(ctx, getSessionIDFromContext(ctx)); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutInfoHandler) handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrInvalidSession) {
		respondError(w, h.logger, http.StatusUnauthorized, "missing_session", "missing shopping session")
		return
	}
	h.logger.Error("checkout info storage failed", zap.Error(err))
	respondError(w, h.logger, http.StatusServiceUnavailable, "storage_unavailable", "checkout info could not be saved")
}
