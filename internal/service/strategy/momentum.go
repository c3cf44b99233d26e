package strategy

import (
	"context"

	"github.com/KNICEX/option-monitor/internal/service/pricefeed"
	"github.com/KNICEX/option-monitor/pkg/decimalx"
	"github.com/shopspring/decimal"
)

// MomentumStrategy 现货动量策略。
// 缓存最近的现货价, 对归一化后的价格序列求斜率:
// 持续上行买入看涨, 持续下行买入看跌。
type MomentumStrategy struct {
	name      string
	window    int
	threshold decimal.Decimal

	// 缓存的现货历史
	history []decimal.Decimal

	// 上一次的信号方向, 避免重复信号
	lastKind SignalKind
}

func NewMomentumStrategy() Strategy {
	return &MomentumStrategy{
		name:      "spot_momentum",
		window:    6,
		threshold: decimal.NewFromFloat(0.08),
		history:   make([]decimal.Decimal, 0, 16),
	}
}

func (s *MomentumStrategy) Name() string {
	return s.name
}

func (s *MomentumStrategy) Evaluate(ctx context.Context, snapshot Snapshot, chain pricefeed.OptionChain) ([]Signal, error) {
	s.history = append(s.history, decimal.NewFromFloat(snapshot.Spot))
	if len(s.history) > s.window*2 {
		s.history = s.history[1:]
	}

	// 数据不足, 无法计算
	if len(s.history) < s.window {
		return nil, nil
	}

	recent := s.history[len(s.history)-s.window:]
	slope := decimalx.Slope(recent)

	var kind SignalKind
	switch {
	case slope.GreaterThan(s.threshold):
		kind = BuyCall
	case slope.LessThan(s.threshold.Neg()):
		kind = BuyPut
	default:
		s.lastKind = ""
		return nil, nil
	}

	// 同方向连续触发只报一次
	if kind == s.lastKind {
		return nil, nil
	}
	s.lastKind = kind

	expiry, strike, quote, ok := nearestQuote(chain, snapshot.Spot)
	if !ok {
		// 没有期权链就无法给出具体合约
		return nil, nil
	}

	signal := NewSignal(snapshot.Symbol, s.name, kind)
	signal.Expiry = expiry
	signal.Strike = strike
	signal.SpotPrice = snapshot.Spot
	if kind == BuyCall {
		signal.Price = quote.Call
	} else {
		signal.Price = quote.Put
	}
	signal.Confidence = s.confidence(slope)
	return []Signal{signal}, nil
}

// confidence 斜率绝对值映射到 0.5~1
func (s *MomentumStrategy) confidence(slope decimal.Decimal) float64 {
	c := decimal.NewFromFloat(0.5).Add(slope.Abs())
	c = decimal.Min(decimal.NewFromInt(1), c)
	return c.Round(2).InexactFloat64()
}
