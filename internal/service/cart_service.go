package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_cart/cart-store/internal/storage"
)

var ErrInvalidSession = errors.New("session id is required")

// CartService hands out one Store per shopping session. It is constructed once at startup and
// shared by every consumer of the cart.
type CartService struct {
	blobs    storage.BlobStore
	checkout *CheckoutInfoService
	logger   *zap.Logger

	mu     sync.RWMutex
	stores map[string]*Store
	sfg    singleflight.Group // one restore per session
}

func NewCartService(blobs storage.BlobStore, checkout *CheckoutInfoService, logger *zap.Logger) *CartService {
	return &CartService{
		blobs:    blobs,
		checkout: checkout,
		logger:   logger,
		stores:   make(map[string]*Store),
	}
}

// Cart returns the session's store, restoring it from durable storage on first use.
func (s *CartService) Cart(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	s.mu.RLock()
	store, ok := s.stores[sessionID]
	s.mu.RUnlock()
	if ok {
		return store, nil
	}

	v, _, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		s.mu.RLock()
		existing, ok := s.stores[sessionID]
		s.mu.RUnlock()
		if ok {
			return existing, nil
		}

		// The restore must not be tied to whichever request happened to trigger it.
		restored := NewStore(context.WithoutCancel(ctx), s.blobs, cartKey(sessionID), s.logger)

		s.mu.Lock()
		s.stores[sessionID] = restored
		s.mu.Unlock()
		return restored, nil
	})

	return v.(*Store), nil
}

// Lookup returns the session's store without holding on to carts that have nothing in them. A
// session that is not in memory and has no items in durable storage gets a detached, empty store;
// it is only kept once a product is added through Cart.
func (s *CartService) Lookup(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	s.mu.RLock()
	store, ok := s.stores[sessionID]
	s.mu.RUnlock()
	if ok {
		return store, nil
	}

	restored := NewStore(context.WithoutCancel(ctx), s.blobs, cartKey(sessionID), s.logger)
	if restored.Len() == 0 {
		return restored, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.stores[sessionID]; ok {
		return existing, nil
	}
	s.stores[sessionID] = restored
	return restored, nil
}

// ClearSession empties the session's cart and forgets its checkout form, as after a placed order.
// The session's store is released; a later request restores it from durable storage.
func (s *CartService) ClearSession(ctx context.Context, sessionID string) error {
	store, err := s.Lookup(ctx, sessionID)
	if err != nil {
		return err
	}
	store.ClearCart(ctx)

	s.mu.Lock()
	if s.stores[sessionID] == store {
		delete(s.stores, sessionID)
	}
	s.mu.Unlock()

	if s.checkout != nil {
		if err := s.checkout.Clear(ctx, sessionID); err != nil {
			s.logger.Warn("failed to clear checkout info",
				zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return nil
}

// Sessions is the number of carts currently held in memory.
func (s *CartService) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stores)
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
