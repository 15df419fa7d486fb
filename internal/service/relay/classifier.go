package relay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KNICEX/binance-signals/internal/service/exchange"
	"github.com/KNICEX/binance-signals/internal/service/notification"
	"github.com/KNICEX/binance-signals/pkg/decimalx"
	"github.com/KNICEX/binance-signals/pkg/prettyx"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const eventTimeLayout = "2006-01-02 15:04:05"

// Classification is the template to render and the content to render it with.
type Classification struct {
	TemplateId string
	Content    notification.Content
}

// Classifier 根据事件类型选择模板, 订单事件额外查询持仓补充杠杆与保证金
type Classifier struct {
	positionSvc exchange.PositionService
	logger      zerolog.Logger
	location    *time.Location
}

type ClassifierOption func(c *Classifier)

// WithLocation sets the time zone used for event timestamps in messages.
func WithLocation(loc *time.Location) ClassifierOption {
	return func(c *Classifier) {
		if loc != nil {
			c.location = loc
		}
	}
}

func NewClassifier(positionSvc exchange.PositionService, logger zerolog.Logger, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		positionSvc: positionSvc,
		logger:      logger.With().Str("component", "classifier").Logger(),
		location:    time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectTemplate maps an event category and its reason to a template id.
// ACCOUNT_UPDATE reasons other than FUNDING_FEE and ORDER use the general template.
func SelectTemplate(eventType exchange.EventType, reason exchange.EventReasonType) string {
	switch eventType {
	case exchange.EventTypeOrderTradeUpdate:
		return notification.TemplateOrderTradeUpdate
	case exchange.EventTypeAccountUpdate:
		switch reason {
		case exchange.EventReasonFundingFee:
			return notification.TemplateAccountUpdateFundingFee
		case exchange.EventReasonOrder:
			return notification.TemplateAccountUpdateOrder
		}
	}
	return notification.TemplateGeneral
}

// PositionSideSuffix 单向持仓 (BOTH) 不显示方向
func PositionSideSuffix(side exchange.PositionSide) string {
	if side == "" || side == exchange.PositionSideBoth {
		return ""
	}
	return " " + string(side)
}

// Classify never fails: enrichment errors degrade to empty leverage and zero margin.
func (c *Classifier) Classify(ctx context.Context, event exchange.AccountEvent) Classification {
	var reason exchange.EventReasonType
	if event.UpdateData != nil {
		reason = event.UpdateData.EventReasonType
	}

	switch templateId := SelectTemplate(event.EventType, reason); templateId {
	case notification.TemplateOrderTradeUpdate:
		if event.Order != nil {
			return Classification{TemplateId: templateId, Content: c.orderContent(ctx, event)}
		}
	case notification.TemplateAccountUpdateFundingFee, notification.TemplateAccountUpdateOrder:
		if len(event.UpdateData.Balances) > 0 {
			return Classification{TemplateId: templateId, Content: c.balanceContent(event)}
		}
	}
	return Classification{TemplateId: notification.TemplateGeneral, Content: c.generalContent(event)}
}

func (c *Classifier) orderContent(ctx context.Context, event exchange.AccountEvent) notification.Content {
	order := event.Order
	leverage, margin := "", decimal.Zero
	if position, ok := c.findPosition(ctx, order.Symbol, order.PositionSide); ok {
		leverage = fmt.Sprintf("%d %s", position.Leverage, strings.ToUpper(string(position.MarginType)))
		if position.Leverage != 0 {
			margin = decimalx.FromStringOrZero(order.BidsNotional).Div(decimal.NewFromInt(int64(position.Leverage)))
		}
	}

	return notification.Content{
		"eventType":          string(event.EventType),
		"eventTime":          c.formatTime(event.EventTime),
		"symbol":             order.Symbol,
		"positionSide":       PositionSideSuffix(order.PositionSide),
		"side":               order.Side,
		"orderType":          order.OrderType,
		"orderStatus":        order.OrderStatus,
		"executionType":      order.ExecutionType,
		"price":              order.OriginalPrice,
		"averagePrice":       order.AveragePrice,
		"stopPrice":          nonZero(order.StopPrice),
		"quantity":           order.OriginalQuantity,
		"filledQuantity":     order.AccumulatedQuantity,
		"lastFilledPrice":    order.LastFilledPrice,
		"lastFilledQuantity": order.LastFilledQuantity,
		"commission":         nonZero(order.Commission),
		"commissionAsset":    order.CommissionAsset,
		"realizedProfit":     nonZero(order.RealizedProfit),
		"bidsNotional":       order.BidsNotional,
		"asksNotional":       order.AsksNotional,
		"isReduceOnly":       order.IsReduceOnly,
		"leverage":           leverage,
		"margin":             margin,
	}
}

// findPosition 每次都实时查询全部持仓, 查询失败按未匹配处理
func (c *Classifier) findPosition(ctx context.Context, symbol string, side exchange.PositionSide) (exchange.Position, bool) {
	positions, err := c.positionSvc.GetPositionRisk(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("query position risk failed, continue without leverage")
		return exchange.Position{}, false
	}
	return lo.Find(positions, func(p exchange.Position) bool {
		return p.Matches(symbol, side)
	})
}

func (c *Classifier) balanceContent(event exchange.AccountEvent) notification.Content {
	balance := event.UpdateData.Balances[0]
	return notification.Content{
		"eventType":          string(event.EventType),
		"eventTime":          c.formatTime(event.EventTime),
		"eventReasonType":    string(event.UpdateData.EventReasonType),
		"asset":              balance.Asset,
		"walletBalance":      balance.WalletBalance,
		"crossWalletBalance": balance.CrossWalletBalance,
		"balanceChange":      balance.BalanceChange,
	}
}

func (c *Classifier) generalContent(event exchange.AccountEvent) notification.Content {
	return notification.Content{
		"eventType": string(event.EventType),
		"code":      prettyx.Render(event),
	}
}

func (c *Classifier) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(c.location).Format(eventTimeLayout)
}

func nonZero(s string) string {
	if decimalx.FromStringOrZero(s).IsZero() {
		return ""
	}
	return s
}
