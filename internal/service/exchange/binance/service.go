package binance

import (
	"github.com/KNICEX/binance-signals/internal/service/exchange"
	"github.com/adshao/go-binance/v2/futures"
)

var _ exchange.Service = (*Service)(nil)

type Service struct {
	positionSvc exchange.PositionService
	streamSvc   exchange.UserStreamService
}

func NewService(cli *futures.Client) *Service {
	return &Service{
		positionSvc: NewPositionService(cli),
		streamSvc:   NewUserStreamService(cli),
	}
}

func (s *Service) PositionService() exchange.PositionService {
	return s.positionSvc
}

func (s *Service) UserStreamService() exchange.UserStreamService {
	return s.streamSvc
}
