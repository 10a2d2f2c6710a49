package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/cart-store/internal/domain"
	"github.com/fjod/go_cart/cart-store/internal/storage"
)

// CheckoutInfoService persists the checkout form draft of a session next to its cart.
type CheckoutInfoService struct {
	blobs  storage.BlobStore
	logger *zap.Logger
}

func NewCheckoutInfoService(blobs storage.BlobStore, logger *zap.Logger) *CheckoutInfoService {
	return &CheckoutInfoService{
		blobs:  blobs,
		logger: logger,
	}
}

// Load returns the saved checkout info. Missing, unreadable and corrupted data all report ok=false.
func (c *CheckoutInfoService) Load(ctx context.Context, sessionID string) (domain.CheckoutInfo, bool) {
	var info domain.CheckoutInfo
	if sessionID == "" {
		return info, false
	}

	data, err := c.blobs.Get(ctx, checkoutInfoKey(sessionID))
	if errors.Is(err, storage.ErrNotFound) {
		return info, false
	}
	if err != nil {
		c.logger.Warn("failed to read checkout info", zap.String("session_id", sessionID), zap.Error(err))
		return info, false
	}
	if err := json.Unmarshal(data, &info); err != nil {
		c.logger.Warn("saved checkout info is corrupted", zap.String("session_id", sessionID), zap.Error(err))
		return domain.CheckoutInfo{}, false
	}
	return info, true
}

func (c *CheckoutInfoService) Save(ctx context.Context, sessionID string, info domain.CheckoutInfo) error {
	if sessionID == "" {
		return ErrInvalidSession
	}
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode checkout info: %w", err)
	}
	if err := c.blobs.Set(ctx, checkoutInfoKey(sessionID), data); err != nil {
		return fmt.Errorf("failed to save checkout info: %w", err)
	}
	return nil
}

func (c *CheckoutInfoService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSession
	}
	if err := c.blobs.Remove(ctx, checkoutInfoKey(sessionID)); err != nil {
		return fmt.Errorf("failed to clear checkout info: %w", err)
	}
	return nil
}

func checkoutInfoKey(sessionID string) string {
	return fmt.Sprintf("checkoutInfo:%s", sessionID)
}
