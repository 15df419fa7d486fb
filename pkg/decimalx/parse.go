package decimalx

import (
	"strings"

	"github.com/shopspring/decimal"
)

func MustFromString(s string) decimal.Decimal {
	res, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return res
}

// FromStringOrZero 解析交易所推送的数值字符串, 空串或非法值返回 0
func FromStringOrZero(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	res, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return res
}

// Fixed formats numeric values with a fixed number of places.
// Non-numeric strings are returned unchanged, nil renders as "0".
func Fixed(places int32, v any) string {
	switch x := v.(type) {
	case nil:
		return decimal.Zero.StringFixed(places)
	case decimal.Decimal:
		return x.StringFixed(places)
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero.StringFixed(places)
		}
		return x.StringFixed(places)
	case int:
		return decimal.NewFromInt(int64(x)).StringFixed(places)
	case int64:
		return decimal.NewFromInt(x).StringFixed(places)
	case float64:
		return decimal.NewFromFloat(x).StringFixed(places)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return x
		}
		return d.StringFixed(places)
	default:
		return ""
	}
}
