package relay

import (
	"context"

	"github.com/KNICEX/binance-signals/internal/entity"
	"github.com/KNICEX/binance-signals/internal/repo"
	"github.com/KNICEX/binance-signals/internal/service/exchange"
	"github.com/KNICEX/binance-signals/internal/service/notification"
	"github.com/rs/zerolog"
)

// Pipeline classify -> render -> notify, 每个事件最多推送一次, 失败不重试
type Pipeline struct {
	classifier *Classifier
	renderer   notification.Renderer
	notifier   notification.Notifier
	journal    repo.NotificationRepo
	logger     zerolog.Logger
}

type PipelineOption func(p *Pipeline)

// WithJournal records the outcome of every event.
func WithJournal(journal repo.NotificationRepo) PipelineOption {
	return func(p *Pipeline) {
		p.journal = journal
	}
}

func NewPipeline(classifier *Classifier, renderer notification.Renderer, notifier notification.Notifier,
	logger zerolog.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		classifier: classifier,
		renderer:   renderer,
		notifier:   notifier,
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Handle(ctx context.Context, event exchange.AccountEvent) {
	cls := p.classifier.Classify(ctx, event)
	record := entity.Notification{
		EventType: string(event.EventType),
		Symbol:    symbolOf(event),
		Template:  cls.TemplateId,
		EventTime: event.EventTime,
	}
	logger := p.logger.With().
		Str("event", record.EventType).
		Str("symbol", record.Symbol).
		Str("template", record.Template).
		Logger()

	text, err := p.renderer.Render(ctx, cls.TemplateId, cls.Content)
	if err != nil {
		logger.Error().Err(err).Msg("render notification failed")
		record.Status = entity.NotificationStatusRenderFailed
		record.Error = err.Error()
		p.record(ctx, record)
		return
	}

	if err = p.notifier.Notify(ctx, text); err != nil {
		logger.Error().Err(err).Msg("deliver notification failed")
		record.Status = entity.NotificationStatusDeliveryFailed
		record.Error = err.Error()
	} else {
		logger.Info().Msg("notification sent")
		record.Status = entity.NotificationStatusSent
	}
	p.record(ctx, record)
}

func (p *Pipeline) record(ctx context.Context, n entity.Notification) {
	if p.journal == nil {
		return
	}
	if _, err := p.journal.Create(ctx, n); err != nil {
		p.logger.Warn().Err(err).Str("event", n.EventType).Msg("write notification journal failed")
	}
}

func symbolOf(event exchange.AccountEvent) string {
	switch {
	case event.Order != nil:
		return event.Order.Symbol
	case len(event.Positions) > 0:
		return event.Positions[0].Symbol
	case event.UpdateData != nil && len(event.UpdateData.Balances) > 0:
		return event.UpdateData.Balances[0].Asset
	}
	return ""
}
