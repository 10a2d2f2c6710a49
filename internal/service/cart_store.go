package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/cart-store/internal/domain"
	"github.com/fjod/go_cart/cart-store/internal/storage"
)

// Store is the authoritative cart of one session. Every mutation that changes the cart is written
// through to the blob store before the call returns; write failures are logged and the in-memory
// cart stays the source of truth.
//
// Operations never fail. Invalid input is a logged no-op, and the bool results only report whether
// the cart changed.
type Store struct {
	mu     sync.Mutex
	items  []domain.LineItem
	blobs  storage.BlobStore
	key    string
	logger *zap.Logger
}

// NewStore restores the cart saved under key. A missing, unreadable or corrupted blob yields an
// empty cart.
func NewStore(ctx context.Context, blobs storage.BlobStore, key string, logger *zap.Logger) *Store {
	s := &Store{
		blobs:  blobs,
		key:    key,
		logger: logger.With(zap.String("cart_key", key)),
	}
	s.items = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []domain.LineItem {
	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("failed to read saved cart, starting empty", zap.Error(err))
		return nil
	}

	var saved []domain.LineItem
	if err := json.Unmarshal(data, &saved); err != nil {
		s.logger.Warn("saved cart is corrupted, starting empty", zap.Error(err))
		return nil
	}

	items := make([]domain.LineItem, 0, len(saved))
	for _, item := range saved {
		if item.ProductID == "" || item.Quantity < 1 {
			s.logger.Warn("dropping invalid saved line item",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity))
			continue
		}
		if i := indexOf(items, item.ProductID); i >= 0 {
			items[i].Quantity = addQuantity(items[i].Quantity, item.Quantity)
			continue
		}
		items = append(items, item)
	}
	return items
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []domain.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("failed to encode cart", zap.Error(err))
		return
	}
	if err := s.blobs.Set(ctx, s.key, data); err != nil {
		s.logger.Error("failed to persist cart", zap.Error(err))
	}
}

// AddToCart adds quantity units of product. Quantities below 1 count as 1, so passing 0 adds a
// single unit. A product already in the cart has its quantity increased instead of being duplicated.
func (s *Store) AddToCart(ctx context.Context, product domain.Product, quantity int) bool {
	if product.ID == "" {
		s.logger.Warn("ignoring add to cart for product without id")
		return false
	}
	quantity = clampQuantity(quantity)

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.items, string(product.ID)); i >= 0 {
		s.items[i].Quantity = addQuantity(s.items[i].Quantity, quantity)
	} else {
		s.items = append(s.items, domain.NewLineItem(product, quantity))
	}
	s.persist(ctx)
	return true
}

func (s *Store) RemoveFromCart(ctx context.Context, productID string) bool {
	if productID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.remove(productID) {
		return false
	}
	s.persist(ctx)
	return true
}

// remove must be called with s.mu held.
func (s *Store) remove(productID string) bool {
	i := indexOf(s.items, productID)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// UpdateQuantity overwrites the quantity of productID with the floor of quantity. A quantity that
// is not a finite number or is below 1 removes the line item.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity float64) bool {
	if productID == "" {
		return false
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, -1) || quantity < 1 {
		return s.RemoveFromCart(ctx, productID)
	}

	next := domain.MaxQuantity
	if quantity < float64(domain.MaxQuantity) {
		next = int(math.Floor(quantity))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.items, productID)
	if i < 0 {
		return false
	}
	if s.items[i].Quantity == next {
		return false
	}
	s.items[i].Quantity = next
	s.persist(ctx)
	return true
}

func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.LineItem(nil), s.items...)
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.CartTotal(s.items)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.CartCount(s.items)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

func indexOf(items []domain.LineItem, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func clampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	if q > domain.MaxQuantity {
		return domain.MaxQuantity
	}
	return q
}

func addQuantity(a, b int) int {
	if a > domain.MaxQuantity-b {
		return domain.MaxQuantity
	}
	return a + b
}
