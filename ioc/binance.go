package ioc

import (
	"time"

	"github.com/KNICEX/binance-signals/internal/service/exchange"
	"github.com/adshao/go-binance/v2/futures"
)

func InitBinanceFuturesCli() *futures.Client {
	type Config struct {
		ApiKey    string `mapstructure:"api_key" validate:"required"`
		ApiSecret string `mapstructure:"api_secret" validate:"required"`
		Testnet   bool   `mapstructure:"testnet"`
	}

	var cfg Config
	unmarshalKey("cex.binance", &cfg)

	// 同时影响 REST 与 websocket 地址, 必须在创建 client 之前设置
	futures.UseTestnet = cfg.Testnet
	return futures.NewClient(cfg.ApiKey, cfg.ApiSecret)
}

// InitPositionService 持仓查询外包一层熔断
func InitPositionService(next exchange.PositionService) exchange.PositionService {
	type Config struct {
		MaxFailures uint32        `mapstructure:"max_failures"`
		OpenTimeout time.Duration `mapstructure:"open_timeout"`
	}

	var cfg Config
	unmarshalKey("breaker", &cfg)

	return exchange.NewBreakerPositionService(next, exchange.BreakerConfig{
		MaxFailures: cfg.MaxFailures,
		OpenTimeout: cfg.OpenTimeout,
	})
}
