package binance

import (
	"context"
	"fmt"
	"sync"

	"github.com/KNICEX/binance-signals/internal/service/exchange"
	"github.com/adshao/go-binance/v2/futures"
)

var _ exchange.UserStreamService = (*UserStreamService)(nil)

type UserStreamService struct {
	cli *futures.Client
}

func NewUserStreamService(cli *futures.Client) *UserStreamService {
	return &UserStreamService{cli: cli}
}

// Open 申请 listenKey 并订阅用户数据流
func (s *UserStreamService) Open(ctx context.Context, handler exchange.EventHandler, errHandler exchange.ErrHandler) (exchange.StreamSession, error) {
	listenKey, err := s.cli.NewStartUserStreamService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("start user stream: %w", err)
	}

	doneC, stopC, err := futures.WsUserDataServe(listenKey, func(event *futures.WsUserDataEvent) {
		if event == nil {
			return
		}
		handler(fromBinanceUserDataEvent(event))
	}, func(err error) {
		if errHandler != nil {
			errHandler(err)
		}
	})
	if err != nil {
		// websocket 建立失败, listenKey 也一并注销
		_ = s.cli.NewCloseUserStreamService().ListenKey(listenKey).Do(ctx)
		return nil, fmt.Errorf("serve user data: %w", err)
	}

	return &userStreamSession{
		cli:       s.cli,
		listenKey: listenKey,
		doneC:     doneC,
		stopC:     stopC,
	}, nil
}

type userStreamSession struct {
	cli       *futures.Client
	listenKey string
	doneC     chan struct{}
	stopC     chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func (s *userStreamSession) Done() <-chan struct{} {
	return s.doneC
}

func (s *userStreamSession) KeepAlive(ctx context.Context) error {
	if err := s.cli.NewKeepaliveUserStreamService().ListenKey(s.listenKey).Do(ctx); err != nil {
		return fmt.Errorf("keepalive user stream: %w", err)
	}
	return nil
}

func (s *userStreamSession) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		close(s.stopC)
		if err := s.cli.NewCloseUserStreamService().ListenKey(s.listenKey).Do(ctx); err != nil {
			s.closeErr = fmt.Errorf("close user stream: %w", err)
		}
	})
	return s.closeErr
}
