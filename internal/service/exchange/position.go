package exchange

import (
	"context"

	"github.com/shopspring/decimal"
)

// https://developers.binance.com/docs/zh-CN/derivatives/usds-margined-futures/trade/rest-api/Position-Information-V2

type MarginType string

const (
	MarginTypeIsolated MarginType = "ISOLATED"
	MarginTypeCross    MarginType = "CROSS"
)

type PositionSide string

const (
	PositionSideBoth  PositionSide = "BOTH"
	PositionSideLong  PositionSide = "LONG"
	PositionSideShort PositionSide = "SHORT"
)

// Position 持仓快照, 每次查询都是交易所的实时状态
type Position struct {
	Symbol           string
	PositionSide     PositionSide
	EntryPrice       decimal.Decimal
	BreakEvenPrice   decimal.Decimal
	MarginType       MarginType // 币安返回小写 isolated / cross
	Leverage         int
	LiquidationPrice decimal.Decimal
	MarkPrice        decimal.Decimal
	PositionAmount   decimal.Decimal
	// 逐仓保证金
	IsolatedMargin   decimal.Decimal
	UnrealizedProfit decimal.Decimal
}

// Matches reports whether the position belongs to the given symbol and side.
func (p Position) Matches(symbol string, side PositionSide) bool {
	return p.Symbol == symbol && p.PositionSide == side
}

type PositionService interface {
	// GetPositionRisk 获取账户全部持仓风险信息（含未开仓的交易对）, 不做缓存
	GetPositionRisk(ctx context.Context) ([]Position, error)
}
