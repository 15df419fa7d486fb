package ioc

import (
	"time"

	"github.com/KNICEX/binance-signals/internal/schedule"
	"github.com/KNICEX/binance-signals/internal/service/monitor"
	"github.com/KNICEX/binance-signals/internal/service/relay"
	"github.com/rs/zerolog"
)

// InitScheduler 注册心跳与 listenKey 续期任务
func InitScheduler(supervisor *relay.Supervisor, logger zerolog.Logger) *schedule.Scheduler {
	type WatchdogConfig struct {
		URL     string        `mapstructure:"url" validate:"omitempty,url"`
		Spec    string        `mapstructure:"spec"`
		Timeout time.Duration `mapstructure:"timeout"`
	}
	type StreamConfig struct {
		KeepAliveSpec string `mapstructure:"keepalive_spec"`
	}

	var watchdog WatchdogConfig
	unmarshalKey("watchdog", &watchdog)
	var stream StreamConfig
	unmarshalKey("stream", &stream)

	if watchdog.Spec == "" {
		watchdog.Spec = "*/5 * * * *"
	}
	if watchdog.Timeout <= 0 {
		watchdog.Timeout = 10 * time.Second
	}
	if stream.KeepAliveSpec == "" {
		stream.KeepAliveSpec = "*/30 * * * *"
	}
	if watchdog.URL == "" {
		logger.Warn().Msg("watchdog url not configured, only systemd watchdog is notified")
	}

	s := schedule.NewScheduler(logger, time.Local)
	if err := s.Add(watchdog.Spec, monitor.NewWatchdogTask(watchdog.URL, logger), watchdog.Timeout); err != nil {
		panic(err)
	}
	if err := s.Add(stream.KeepAliveSpec, relay.NewKeepAliveTask(supervisor), 30*time.Second); err != nil {
		panic(err)
	}
	return s
}
