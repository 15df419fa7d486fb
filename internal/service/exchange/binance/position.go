package binance

import (
	"context"
	"fmt"
	"strconv"

	"github.com/KNICEX/binance-signals/internal/service/exchange"
	"github.com/KNICEX/binance-signals/pkg/decimalx"
	"github.com/adshao/go-binance/v2/futures"
)

var _ exchange.PositionService = (*PositionService)(nil)

type PositionService struct {
	cli *futures.Client
}

// NewPositionService 创建持仓服务
func NewPositionService(cli *futures.Client) *PositionService {
	return &PositionService{cli: cli}
}

// GetPositionRisk 获取全部交易对的持仓风险
// notice: 不过滤数量为 0 的仓位, 平仓成交后仍需要匹配杠杆与保证金模式
func (p *PositionService) GetPositionRisk(ctx context.Context) ([]exchange.Position, error) {
	binancePositions, err := p.cli.NewGetPositionRiskService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("get position risk: %w", err)
	}
	positions := make([]exchange.Position, 0, len(binancePositions))
	for _, v := range binancePositions {
		position, err := fromBinancePositionRisk(v)
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}
	return positions, nil
}

func fromBinancePositionRisk(v *futures.PositionRisk) (exchange.Position, error) {
	leverage := 0
	if v.Leverage != "" {
		lev, err := strconv.Atoi(v.Leverage)
		if err != nil {
			return exchange.Position{}, fmt.Errorf("parse leverage of %s: %w", v.Symbol, err)
		}
		leverage = lev
	}
	return exchange.Position{
		Symbol:           v.Symbol,
		PositionSide:     exchange.PositionSide(v.PositionSide),
		EntryPrice:       decimalx.FromStringOrZero(v.EntryPrice),
		BreakEvenPrice:   decimalx.FromStringOrZero(v.BreakEvenPrice),
		MarginType:       exchange.MarginType(v.MarginType),
		Leverage:         leverage,
		LiquidationPrice: decimalx.FromStringOrZero(v.LiquidationPrice),
		MarkPrice:        decimalx.FromStringOrZero(v.MarkPrice),
		PositionAmount:   decimalx.FromStringOrZero(v.PositionAmt),
		IsolatedMargin:   decimalx.FromStringOrZero(v.IsolatedMargin),
		UnrealizedProfit: decimalx.FromStringOrZero(v.UnRealizedProfit),
	}, nil
}
