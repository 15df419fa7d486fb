package binance

import (
	"time"

	"github.com/KNICEX/binance-signals/internal/service/exchange"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/samber/lo"
)

func fromBinanceUserDataEvent(ev *futures.WsUserDataEvent) exchange.AccountEvent {
	event := exchange.AccountEvent{
		EventType: exchange.EventType(ev.Event),
		EventTime: fromMilli(ev.Time),
	}
	if ev.TransactionTime > 0 {
		event.TransactionTime = fromMilli(ev.TransactionTime)
	}

	switch ev.Event {
	case futures.UserDataEventTypeMarginCall:
		event.CrossWalletBalance = ev.CrossWalletBalance
		event.Positions = fromBinancePositions(ev.MarginCallPositions)
	case futures.UserDataEventTypeAccountUpdate:
		event.UpdateData = fromBinanceAccountUpdate(ev.AccountUpdate)
	case futures.UserDataEventTypeOrderTradeUpdate:
		event.Order = fromBinanceOrderTradeUpdate(ev.OrderTradeUpdate)
	}
	return event
}

func fromBinanceAccountUpdate(u futures.WsAccountUpdate) *exchange.AccountUpdate {
	return &exchange.AccountUpdate{
		EventReasonType: exchange.EventReasonType(u.Reason),
		Balances: lo.Map(u.Balances, func(b futures.WsBalance, _ int) exchange.Balance {
			return exchange.Balance{
				Asset:              b.Asset,
				WalletBalance:      b.Balance,
				CrossWalletBalance: b.CrossWalletBalance,
				BalanceChange:      b.ChangeBalance,
			}
		}),
		Positions: fromBinancePositions(u.Positions),
	}
}

func fromBinancePositions(ps []futures.WsPosition) []exchange.AccountPosition {
	if len(ps) == 0 {
		return nil
	}
	return lo.Map(ps, func(p futures.WsPosition, _ int) exchange.AccountPosition {
		return exchange.AccountPosition{
			Symbol:         p.Symbol,
			PositionSide:   exchange.PositionSide(p.Side),
			PositionAmount: p.Amount,
			MarginType:     exchange.MarginType(p.MarginType),
			IsolatedWallet: p.IsolatedWallet,
			EntryPrice:     p.EntryPrice,
			MarkPrice:      p.MarkPrice,
			UnrealizedPnl:  p.UnrealizedPnL,

			MaintenanceMargin:   p.MaintenanceMarginRequired,
			AccumulatedRealized: p.AccumulatedRealized,
		}
	})
}

func fromBinanceOrderTradeUpdate(o futures.WsOrderTradeUpdate) *exchange.OrderUpdate {
	return &exchange.OrderUpdate{
		Symbol:              o.Symbol,
		ClientOrderId:       o.ClientOrderID,
		Side:                string(o.Side),
		OrderType:           string(o.Type),
		OriginalQuantity:    o.OriginalQty,
		OriginalPrice:       o.OriginalPrice,
		AveragePrice:        o.AveragePrice,
		StopPrice:           o.StopPrice,
		ExecutionType:       string(o.ExecutionType),
		OrderStatus:         string(o.Status),
		OrderId:             o.ID,
		LastFilledQuantity:  o.LastFilledQty,
		AccumulatedQuantity: o.AccumulatedFilledQty,
		LastFilledPrice:     o.LastFilledPrice,
		CommissionAsset:     o.CommissionAsset,
		Commission:          o.Commission,
		OrderTradeTime:      fromMilli(o.TradeTime),
		TradeId:             o.TradeID,
		BidsNotional:        o.BidsNotional,
		AsksNotional:        o.AsksNotional,
		IsMaker:             o.IsMaker,
		IsReduceOnly:        o.IsReduceOnly,
		PositionSide:        exchange.PositionSide(o.PositionSide),
		RealizedProfit:      o.RealizedPnL,
	}
}

func fromMilli(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
