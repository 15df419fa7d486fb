package ioc

import (
	"github.com/KNICEX/binance-signals/internal/service/notification/telegram"
	tele "gopkg.in/telebot.v4"
)

func InitTelegramNotifier() *telegram.Notifier {
	type Config struct {
		Token      string  `mapstructure:"token" validate:"required"`
		ChatId     int64   `mapstructure:"chat_id" validate:"required"`
		RatePerSec float64 `mapstructure:"rate_per_sec" validate:"gte=0"`
	}

	var cfg Config
	unmarshalKey("telegram", &cfg)

	// 只发送不收消息, 不调用 bot.Start
	bot, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		panic(err)
	}

	ratePerSec := cfg.RatePerSec
	if ratePerSec == 0 {
		// 单个聊天 1 条/秒
		ratePerSec = 1
	}
	return telegram.NewNotifier(bot, cfg.ChatId, telegram.WithRateLimit(ratePerSec))
}
