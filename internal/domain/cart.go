package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxQuantity caps a single line item so that summed and floored quantities stay in int range.
const MaxQuantity = math.MaxInt32

// UntitledProduct is the display name used when a product carries neither a title nor a name.
const UntitledProduct = "Untitled product"

// LineItem is one product-quantity pairing in a cart. DisplayName, UnitPrice, ThumbnailURL and
// SellerID are copied from the product when it is first added and are not re-synced afterwards.
type LineItem struct {
	ProductID    string          `json:"productId"`
	DisplayName  string          `json:"displayName"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
	ThumbnailURL string          `json:"thumbnailUrl"`
	SellerID     *string         `json:"sellerId"`
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewLineItem snapshots the product into a line item with the given quantity.
func NewLineItem(p Product, quantity int) LineItem {
	item := LineItem{
		ProductID:    string(p.ID),
		DisplayName:  p.DisplayName(),
		UnitPrice:    CoercePrice(p.Price),
		Quantity:     quantity,
		ThumbnailURL: p.Thumbnail,
		SellerID:     p.SellerID,
	}
	if item.ThumbnailURL == "" {
		item.ThumbnailURL = p.Image
	}
	return item
}

// CartTotal is the sum of unit price times quantity over all items.
func CartTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// CartCount is the sum of quantities over all items.
func CartCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
