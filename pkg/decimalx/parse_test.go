package decimalx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFromStringOrZero(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want decimal.Decimal
	}{
		{name: "integer", in: "1000", want: decimal.NewFromInt(1000)},
		{name: "fraction", in: "0.00012", want: decimal.RequireFromString("0.00012")},
		{name: "padded", in: " 12.5 ", want: decimal.RequireFromString("12.5")},
		{name: "empty", in: "", want: decimal.Zero},
		{name: "garbage", in: "n/a", want: decimal.Zero},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromStringOrZero(tc.in)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestFixed(t *testing.T) {
	assert.Equal(t, "100.00", Fixed(2, decimal.NewFromInt(100)))
	assert.Equal(t, "0.33", Fixed(2, decimal.NewFromInt(1).Div(decimal.NewFromInt(3))))
	assert.Equal(t, "12.50", Fixed(2, "12.5"))
	assert.Equal(t, "BTC", Fixed(2, "BTC"))
	assert.Equal(t, "0.00", Fixed(2, nil))
	assert.Equal(t, "7.000", Fixed(3, 7))
}

func TestMustFromString(t *testing.T) {
	assert.True(t, decimal.NewFromInt(42).Equal(MustFromString("42")))
	assert.Panics(t, func() { MustFromString("x") })
}
