package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is the catalog descriptor handed to the cart by product pages.
// Only ID is required; everything else is best effort.
type Product struct {
	ID        FlexString `json:"id"`
	Title     string     `json:"title"`
	Name      string     `json:"name"`
	Price     any        `json:"price"`
	Thumbnail string     `json:"thumbnail"`
	Image     string     `json:"image"`
	SellerID  *string    `json:"sellerId"`
}

func (p Product) DisplayName() string {
	if p.Title != "" {
		return p.Title
	}
	if p.Name != "" {
		return p.Name
	}
	return UntitledProduct
}

// FlexString accepts a JSON string or number. Any other JSON value decodes to the empty string.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*s = FlexString(data)
	default:
		*s = ""
	}
	return nil
}

// CoercePrice converts a loosely typed price to a decimal. Unparsable values become zero.
func CoercePrice(v any) decimal.Decimal {
	switch p := v.(type) {
	case decimal.Decimal:
		return p
	case float64:
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(p)
	case float32:
		return CoercePrice(float64(p))
	case int:
		return decimal.NewFromInt(int64(p))
	case int64:
		return decimal.NewFromInt(p)
	case json.Number:
		return CoercePrice(string(p))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// CoerceQuantity converts a loosely typed quantity to a float. ok is false only when v is nil,
// i.e. the caller supplied no quantity at all. Values that are not numbers yield NaN.
func CoerceQuantity(v any) (q float64, ok bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		return CoerceQuantity(string(n))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return math.NaN(), true
	}
}
