package ioc

import (
	"github.com/KNICEX/binance-signals/internal/service/exchange"
	"github.com/KNICEX/binance-signals/internal/service/relay"
	"github.com/rs/zerolog"
)

func InitSupervisor(stream exchange.UserStreamService, handler relay.EventHandler, logger zerolog.Logger) *relay.Supervisor {
	type Config struct {
		Workers int `mapstructure:"workers" validate:"gte=0"`
		Buffer  int `mapstructure:"buffer" validate:"gte=0"`
	}

	var cfg Config
	unmarshalKey("stream", &cfg)

	var opts []relay.SupervisorOption
	if cfg.Workers > 0 {
		opts = append(opts, relay.WithWorkers(cfg.Workers))
	}
	if cfg.Buffer > 0 {
		opts = append(opts, relay.WithBuffer(cfg.Buffer))
	}
	return relay.NewSupervisor(stream, handler, logger, opts...)
}
