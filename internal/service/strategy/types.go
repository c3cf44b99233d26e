package strategy

import (
	"context"
	"time"

	"github.com/KNICEX/option-monitor/internal/service/pricefeed"
	"github.com/google/uuid"
)

type SignalKind string

const (
	BuyCall  SignalKind = "buy_call"
	SellCall SignalKind = "sell_call"
	BuyPut   SignalKind = "buy_put"
	SellPut  SignalKind = "sell_put"
)

// Signal 策略产出的期权操作建议, 创建后不可变
type Signal struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Strategy   string     `json:"strategy"`
	Kind       SignalKind `json:"type"`
	Expiry     string     `json:"expiry"` // "2006-01-02"
	Strike     int        `json:"strike"`
	Price      float64    `json:"price"`      // 期权报价
	SpotPrice  float64    `json:"spot_price"` // 信号生成时的现货价
	Confidence float64    `json:"confidence"` // 0~1
	Timestamp  time.Time  `json:"timestamp"`
}

func NewSignal(symbol, strategyName string, kind SignalKind) Signal {
	return Signal{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Strategy:  strategyName,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

// Snapshot 最近一次刷新的现货快照
type Snapshot struct {
	Symbol    string
	Spot      float64
	UpdatedAt time.Time
}

// Strategy 策略评估契约: 对一份快照返回零个或多个信号。
// 实现可以持有跨周期状态(如价格历史), 因此实例不应在多个标的间共享。
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, snapshot Snapshot, chain pricefeed.OptionChain) ([]Signal, error)
}
