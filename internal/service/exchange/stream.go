package exchange

import (
	"context"
	"time"
)

// https://developers.binance.com/docs/zh-CN/derivatives/usds-margined-futures/user-data-streams

type EventType string

const (
	EventTypeMarginCall          EventType = "MARGIN_CALL"
	EventTypeAccountUpdate       EventType = "ACCOUNT_UPDATE"
	EventTypeOrderTradeUpdate    EventType = "ORDER_TRADE_UPDATE"
	EventTypeAccountConfigUpdate EventType = "ACCOUNT_CONFIG_UPDATE"
	EventTypeListenKeyExpired    EventType = "listenKeyExpired"
)

// Subscribed 是否为需要推送通知的事件类型
func (t EventType) Subscribed() bool {
	switch t {
	case EventTypeMarginCall, EventTypeAccountUpdate, EventTypeOrderTradeUpdate:
		return true
	default:
		return false
	}
}

type EventReasonType string

const (
	EventReasonDeposit             EventReasonType = "DEPOSIT"
	EventReasonWithdraw            EventReasonType = "WITHDRAW"
	EventReasonOrder               EventReasonType = "ORDER"
	EventReasonFundingFee          EventReasonType = "FUNDING_FEE"
	EventReasonWithdrawReject      EventReasonType = "WITHDRAW_REJECT"
	EventReasonAdjustment          EventReasonType = "ADJUSTMENT"
	EventReasonInsuranceClear      EventReasonType = "INSURANCE_CLEAR"
	EventReasonAdminDeposit        EventReasonType = "ADMIN_DEPOSIT"
	EventReasonAdminWithdraw       EventReasonType = "ADMIN_WITHDRAW"
	EventReasonMarginTransfer      EventReasonType = "MARGIN_TRANSFER"
	EventReasonMarginTypeChange    EventReasonType = "MARGIN_TYPE_CHANGE"
	EventReasonAssetTransfer       EventReasonType = "ASSET_TRANSFER"
	EventReasonOptionsPremiumFee   EventReasonType = "OPTIONS_PREMIUM_FEE"
	EventReasonOptionsSettleProfit EventReasonType = "OPTIONS_SETTLE_PROFIT"
)

// AccountEvent 用户数据流推送的一条账户事件, 字段命名与推送文本保持可读
// 数值字段保留交易所原始字符串
type AccountEvent struct {
	EventType       EventType `json:"eventType" yaml:"eventType"`
	EventTime       time.Time `json:"eventTime" yaml:"eventTime"`
	TransactionTime time.Time `json:"transaction,omitempty" yaml:"transaction,omitempty"`

	// MARGIN_CALL
	CrossWalletBalance string            `json:"crossWalletBalance,omitempty" yaml:"crossWalletBalance,omitempty"`
	Positions          []AccountPosition `json:"positions,omitempty" yaml:"positions,omitempty"`

	// ACCOUNT_UPDATE
	UpdateData *AccountUpdate `json:"updateData,omitempty" yaml:"updateData,omitempty"`

	// ORDER_TRADE_UPDATE
	Order *OrderUpdate `json:"order,omitempty" yaml:"order,omitempty"`
}

type AccountUpdate struct {
	EventReasonType EventReasonType   `json:"eventReasonType" yaml:"eventReasonType"`
	Balances        []Balance         `json:"balances" yaml:"balances"`
	Positions       []AccountPosition `json:"positions,omitempty" yaml:"positions,omitempty"`
}

type Balance struct {
	Asset              string `json:"asset" yaml:"asset"`
	WalletBalance      string `json:"walletBalance" yaml:"walletBalance"`
	CrossWalletBalance string `json:"crossWalletBalance" yaml:"crossWalletBalance"`
	BalanceChange      string `json:"balanceChange" yaml:"balanceChange"`
}

type AccountPosition struct {
	Symbol              string       `json:"symbol" yaml:"symbol"`
	PositionSide        PositionSide `json:"positionSide" yaml:"positionSide"`
	PositionAmount      string       `json:"positionAmount" yaml:"positionAmount"`
	MarginType          MarginType   `json:"marginType" yaml:"marginType"`
	IsolatedWallet      string       `json:"isolatedWallet,omitempty" yaml:"isolatedWallet,omitempty"`
	EntryPrice          string       `json:"entryPrice,omitempty" yaml:"entryPrice,omitempty"`
	MarkPrice           string       `json:"markPrice,omitempty" yaml:"markPrice,omitempty"`
	UnrealizedPnl       string       `json:"unrealizedPnl,omitempty" yaml:"unrealizedPnl,omitempty"`
	// 维持保证金, 仅 MARGIN_CALL 推送
	MaintenanceMargin   string       `json:"maintenanceMargin,omitempty" yaml:"maintenanceMargin,omitempty"`
	AccumulatedRealized string       `json:"accumulatedRealized,omitempty" yaml:"accumulatedRealized,omitempty"`
}

type OrderUpdate struct {
	Symbol               string       `json:"symbol" yaml:"symbol"`
	ClientOrderId        string       `json:"clientOrderId" yaml:"clientOrderId"`
	Side                 string       `json:"side" yaml:"side"`
	OrderType            string       `json:"orderType" yaml:"orderType"`
	OriginalQuantity     string       `json:"originalQuantity" yaml:"originalQuantity"`
	OriginalPrice        string       `json:"originalPrice" yaml:"originalPrice"`
	AveragePrice         string       `json:"averagePrice" yaml:"averagePrice"`
	StopPrice            string       `json:"stopPrice" yaml:"stopPrice"`
	ExecutionType        string       `json:"executionType" yaml:"executionType"`
	OrderStatus          string       `json:"orderStatus" yaml:"orderStatus"`
	OrderId              int64        `json:"orderId" yaml:"orderId"`
	LastFilledQuantity   string       `json:"lastFilledQuantity" yaml:"lastFilledQuantity"`
	AccumulatedQuantity  string       `json:"accumulatedQuantity" yaml:"accumulatedQuantity"`
	LastFilledPrice      string       `json:"lastFilledPrice" yaml:"lastFilledPrice"`
	CommissionAsset      string       `json:"commissionAsset,omitempty" yaml:"commissionAsset,omitempty"`
	Commission           string       `json:"commission,omitempty" yaml:"commission,omitempty"`
	OrderTradeTime       time.Time    `json:"orderTradeTime" yaml:"orderTradeTime"`
	TradeId              int64        `json:"tradeId" yaml:"tradeId"`
	BidsNotional         string       `json:"bidsNotional" yaml:"bidsNotional"`
	AsksNotional         string       `json:"asksNotional" yaml:"asksNotional"`
	IsMaker              bool         `json:"isMaker" yaml:"isMaker"`
	IsReduceOnly         bool         `json:"isReduceOnly" yaml:"isReduceOnly"`
	PositionSide         PositionSide `json:"positionSide" yaml:"positionSide"`
	RealizedProfit       string       `json:"realizedProfit" yaml:"realizedProfit"`
}

// StreamSession 一次用户数据流会话 (listenKey + websocket 连接)
type StreamSession interface {
	// Done 在连接断开后关闭
	Done() <-chan struct{}
	// KeepAlive 延长 listenKey 有效期, 币安要求 60 分钟内至少一次
	KeepAlive(ctx context.Context) error
	// Close 断开连接并注销 listenKey, 可重复调用
	Close(ctx context.Context) error
}

type EventHandler func(event AccountEvent)

type ErrHandler func(err error)

type UserStreamService interface {
	// Open 建立新的用户数据流会话, handler 在连接协程内被调用, 不应阻塞过久
	Open(ctx context.Context, handler EventHandler, errHandler ErrHandler) (StreamSession, error)
}
