package exchange

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
)

var _ PositionService = (*BreakerPositionService)(nil)

// BreakerPositionService 熔断包装, 交易所接口连续失败后直接返回 gobreaker.ErrOpenState,
// 避免每个事件都卡在超时上
type BreakerPositionService struct {
	next PositionService
	cb   *gobreaker.CircuitBreaker[[]Position]
}

type BreakerConfig struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

func NewBreakerPositionService(next PositionService, cfg BreakerConfig) *BreakerPositionService {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BreakerPositionService{
		next: next,
		cb: gobreaker.NewCircuitBreaker[[]Position](gobreaker.Settings{
			Name:        "position-risk",
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
		}),
	}
}

func (s *BreakerPositionService) GetPositionRisk(ctx context.Context) ([]Position, error) {
	return s.cb.Execute(func() ([]Position, error) {
		return s.next.GetPositionRisk(ctx)
	})
}
