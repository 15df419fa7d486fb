package prettyx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type order struct {
	Symbol       string `yaml:"symbol"`
	PositionSide string `yaml:"positionSide"`
}

type event struct {
	EventType string    `yaml:"eventType"`
	EventTime time.Time `yaml:"eventTime"`
	Order     *order    `yaml:"order,omitempty"`
}

func TestRender_NestedStruct(t *testing.T) {
	out := Render(event{
		EventType: "ORDER_TRADE_UPDATE",
		EventTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Order:     &order{Symbol: "BTCUSDT", PositionSide: "LONG"},
	})

	assert.Equal(t, "eventType: ORDER_TRADE_UPDATE\n"+
		"eventTime: 2024-01-02T03:04:05Z\n"+
		"order:\n"+
		"  symbol: BTCUSDT\n"+
		"  positionSide: LONG", out)
}

func TestRender_Deterministic(t *testing.T) {
	v := map[string]any{"b": 2, "a": []string{"x", "y"}}
	assert.Equal(t, Render(v), Render(v))
	out := Render(v)
	assert.Contains(t, out, "- x\n")
	assert.Contains(t, out, "b: 2")
	assert.Less(t, strings.Index(out, "a:"), strings.Index(out, "b:"), "keys are sorted")
}

func TestRender_Unsupported(t *testing.T) {
	ch := make(chan int)
	assert.NotPanics(t, func() {
		assert.NotEmpty(t, Render(map[string]any{"c": ch}))
	})
}
