package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPositionService struct {
	calls     int
	err       error
	positions []Position
}

func (s *countingPositionService) GetPositionRisk(ctx context.Context) ([]Position, error) {
	s.calls++
	return s.positions, s.err
}

func TestBreakerPositionService_PassThrough(t *testing.T) {
	next := &countingPositionService{positions: []Position{{Symbol: "BTCUSDT", PositionSide: PositionSideLong, Leverage: 10}}}
	svc := NewBreakerPositionService(next, BreakerConfig{})

	positions, err := svc.GetPositionRisk(context.Background())
	require.NoError(t, err)
	assert.Len(t, positions, 1)
	assert.Equal(t, 1, next.calls)
}

func TestBreakerPositionService_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &countingPositionService{err: errors.New("exchange unavailable")}
	svc := NewBreakerPositionService(next, BreakerConfig{MaxFailures: 3, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := svc.GetPositionRisk(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	// 熔断后不再请求交易所
	_, err := svc.GetPositionRisk(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.calls)
}

func TestPosition_Matches(t *testing.T) {
	p := Position{Symbol: "ETHUSDT", PositionSide: PositionSideShort}
	assert.True(t, p.Matches("ETHUSDT", PositionSideShort))
	assert.False(t, p.Matches("ETHUSDT", PositionSideLong))
	assert.False(t, p.Matches("BTCUSDT", PositionSideShort))
}

func TestEventType_Subscribed(t *testing.T) {
	tests := []struct {
		name string
		typ  EventType
		want bool
	}{
		{name: "margin call", typ: EventTypeMarginCall, want: true},
		{name: "account update", typ: EventTypeAccountUpdate, want: true},
		{name: "order trade update", typ: EventTypeOrderTradeUpdate, want: true},
		{name: "account config update", typ: EventTypeAccountConfigUpdate, want: false},
		{name: "listen key expired", typ: EventTypeListenKeyExpired, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Subscribed())
		})
	}
}
