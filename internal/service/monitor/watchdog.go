package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/KNICEX/binance-signals/internal/schedule"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog"
)

var ErrNoWatchdogURL = errors.New("watchdog url not configured")

// SdNotifier 向 systemd 报告状态, 非 systemd 环境下返回 false, nil
type SdNotifier func(unsetEnvironment bool, state string) (bool, error)

// WatchdogTask 定时访问外部心跳地址, 同时喂 systemd watchdog
type WatchdogTask struct {
	url      string
	client   *http.Client
	sdNotify SdNotifier
	logger   zerolog.Logger
}

type Option func(t *WatchdogTask)

func WithHTTPClient(client *http.Client) Option {
	return func(t *WatchdogTask) {
		t.client = client
	}
}

func WithSdNotifier(notify SdNotifier) Option {
	return func(t *WatchdogTask) {
		t.sdNotify = notify
	}
}

// NewWatchdogTask url 为空时只喂 systemd watchdog
func NewWatchdogTask(url string, logger zerolog.Logger, opts ...Option) schedule.Task {
	return newWatchdogTask(url, logger, opts...)
}

func newWatchdogTask(url string, logger zerolog.Logger, opts ...Option) *WatchdogTask {
	t := &WatchdogTask{
		url:      url,
		client:   http.DefaultClient,
		sdNotify: daemon.SdNotify,
		logger:   logger.With().Str("component", "watchdog").Logger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *WatchdogTask) Run(ctx context.Context) error {
	t.notifySystemd(daemon.SdNotifyWatchdog)
	if err := t.Ping(ctx); err != nil && !errors.Is(err, ErrNoWatchdogURL) {
		return err
	}
	return nil
}

func (t *WatchdogTask) Name() string {
	return "watchdog ping task"
}

// Ping 发送一次心跳, 非 2xx 视为失败
func (t *WatchdogTask) Ping(ctx context.Context) error {
	if t.url == "" {
		return ErrNoWatchdogURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return fmt.Errorf("build watchdog request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("ping watchdog: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ping watchdog: unexpected status %d", resp.StatusCode)
	}
	t.logger.Debug().Int("status", resp.StatusCode).Msg("watchdog ping ok")
	return nil
}

func (t *WatchdogTask) notifySystemd(state string) {
	if t.sdNotify == nil {
		return
	}
	if _, err := t.sdNotify(false, state); err != nil {
		t.logger.Warn().Err(err).Str("state", state).Msg("sd_notify failed")
	}
}

// NotifyReady 服务启动完成后调用一次
func NotifyReady(logger zerolog.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		logger.Warn().Err(err).Msg("sd_notify ready failed")
		return
	}
	if sent {
		logger.Info().Msg("notified systemd ready")
	}
}

// NotifyStopping 进程退出前调用
func NotifyStopping() {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
}
