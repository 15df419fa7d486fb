package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/KNICEX/binance-signals/internal/service/notification"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"
)

var _ notification.Notifier = (*Notifier)(nil)

// Sender is the subset of *tele.Bot used for delivery.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type Notifier struct {
	sender  Sender
	chat    *tele.Chat
	limiter *rate.Limiter
}

type Option func(n *Notifier)

// WithRateLimit caps outgoing messages per second; sends wait for a slot.
func WithRateLimit(perSec float64) Option {
	return func(n *Notifier) {
		if perSec > 0 {
			n.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

func NewNotifier(sender Sender, chatId int64, opts ...Option) *Notifier {
	n := &Notifier{
		sender:  sender,
		chat:    &tele.Chat{ID: chatId},
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Notify(ctx context.Context, text string) error {
	if text == "" {
		return errors.New("empty message")
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait send slot: %w", err)
	}
	_, err := n.sender.Send(n.chat, text, &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("send telegram message to %d: %w", n.chat.ID, err)
	}
	return nil
}
