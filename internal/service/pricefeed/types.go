package pricefeed

import (
	"context"
	"time"
)

type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// OptionQuote 单个行权价上的看涨/看跌报价
type OptionQuote struct {
	Call    float64 `json:"call"`
	Put     float64 `json:"put"`
	CallBid float64 `json:"call_bid"`
	CallAsk float64 `json:"call_ask"`
	PutBid  float64 `json:"put_bid"`
	PutAsk  float64 `json:"put_ask"`
	IVCall  float64 `json:"iv_call"`
	IVPut   float64 `json:"iv_put"`
}

// OptionChain 到期日("2006-01-02") -> 行权价 -> 报价, 每次刷新整体重建
type OptionChain map[string]map[int]OptionQuote

// ChainSpec 请求期权链时已经解析好的行权价与到期日
type ChainSpec struct {
	Strikes  []int
	Expiries []time.Time
}

// Feed 行情来源能力边界: 现货价 + 期权链快照
type Feed interface {
	Spot(ctx context.Context, symbol string) (float64, error)
	Chain(ctx context.Context, symbol string, spot float64, spec ChainSpec) (OptionChain, error)
}
