package strategy

import (
	"context"
	"math"

	"github.com/KNICEX/option-monitor/internal/service/pricefeed"
)

// IVSkewStrategy 隐波偏斜策略。
// 比较平值附近看涨/看跌的隐含波动率, 哪边明显偏贵就卖出哪边。
// 无内部状态, 每个周期独立判断。
type IVSkewStrategy struct {
	name      string
	threshold float64
}

func NewIVSkewStrategy() Strategy {
	return &IVSkewStrategy{
		name:      "iv_skew",
		threshold: 0.04,
	}
}

func (s *IVSkewStrategy) Name() string {
	return s.name
}

func (s *IVSkewStrategy) Evaluate(ctx context.Context, snapshot Snapshot, chain pricefeed.OptionChain) ([]Signal, error) {
	expiry, strike, quote, ok := nearestQuote(chain, snapshot.Spot)
	if !ok {
		return nil, nil
	}

	skew := quote.IVCall - quote.IVPut
	if math.Abs(skew) < s.threshold {
		return nil, nil
	}

	var kind SignalKind
	var price float64
	if skew > 0 {
		kind = SellCall
		price = quote.Call
	} else {
		kind = SellPut
		price = quote.Put
	}

	signal := NewSignal(snapshot.Symbol, s.name, kind)
	signal.Expiry = expiry
	signal.Strike = strike
	signal.Price = price
	signal.SpotPrice = snapshot.Spot
	// 偏斜越大置信度越高, 封顶 1
	signal.Confidence = math.Min(1, 0.5+math.Abs(skew)*5)
	return []Signal{signal}, nil
}
