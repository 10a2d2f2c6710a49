package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/cart-store/internal/domain"
)

func TestCheckoutInfo_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	sut := NewCheckoutInfoService(newMockBlobStore(), zap.NewNop())

	_, ok := sut.Load(ctx, "s1")
	assert.False(t, ok)

	info := domain.CheckoutInfo{FullName: "Ada Lovelace", City: "London", PaymentMethod: "card"}
	require.NoError(t, sut.Save(ctx, "s1", info))

	got, ok := sut.Load(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, info, got)

	require.NoError(t, sut.Clear(ctx, "s1"))
	_, ok = sut.Load(ctx, "s1")
	assert.False(t, ok)
}

func TestCheckoutInfo_Corrupted(t *testing.T) {
	blobs := newMockBlobStore()
	blobs.put("checkoutInfo:s1", `{"fullName":`)
	sut := NewCheckoutInfoService(blobs, zap.NewNop())

	got, ok := sut.Load(context.Background(), "s1")
	assert.False(t, ok)
	assert.Equal(t, domain.CheckoutInfo{}, got)
}

func TestCheckoutInfo_SaveFailure(t *testing.T) {
	blobs := newMockBlobStore()
	blobs.setErr = errors.New("quota exceeded")
	sut := NewCheckoutInfoService(blobs, zap.NewNop())

	err := sut.Save(context.Background(), "s1", domain.CheckoutInfo{FullName: "Ada"})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestCheckoutInfo_EmptySession(t *testing.T) {
	ctx := context.Background()
	sut := NewCheckoutInfoService(newMockBlobStore(), zap.NewNop())

	assert.ErrorIs(t, sut.Save(ctx, "", domain.CheckoutInfo{}), ErrInvalidSession)
	assert.ErrorIs(t, sut.Clear(ctx, ""), ErrInvalidSession)
	_, ok := sut.Load(ctx, "")
	assert.False(t, ok)
}
