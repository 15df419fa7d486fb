package ioc

import (
	"github.com/KNICEX/binance-signals/internal/repo"
	"github.com/KNICEX/binance-signals/internal/web"
	"github.com/rs/zerolog"
)

func InitWebServer(journal repo.NotificationRepo, logger zerolog.Logger) *web.Server {
	type Config struct {
		Port int `mapstructure:"port" validate:"gte=0,lte=65535"`
	}

	var cfg Config
	unmarshalKey("http", &cfg)
	if cfg.Port == 0 {
		cfg.Port = 3000
	}
	return web.NewServer(cfg.Port, journal, logger)
}
