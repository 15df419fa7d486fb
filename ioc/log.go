package ioc

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func InitLogger() zerolog.Logger {
	type Config struct {
		Level   string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error"`
		Console bool   `mapstructure:"console"`
	}
	var cfg Config
	unmarshalKey("log", &cfg)

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			panic(err)
		}
		level = l
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.Console {
		w := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02T15:04:05.000Z07:00"}
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}
