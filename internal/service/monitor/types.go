package monitor

import (
	"time"

	"github.com/KNICEX/option-monitor/internal/service/strategy"
)

// MarketSession 市场时段, 每个周期根据当前时间重新推导, 不落库
type MarketSession string

const (
	SessionClosed     MarketSession = "CLOSED"
	SessionPreMarket  MarketSession = "PRE_MARKET"
	SessionRegular    MarketSession = "REGULAR_HOURS"
	SessionAfterHours MarketSession = "AFTER_HOURS"
	SessionOpen24x7   MarketSession = "OPEN_24X7"
)

// CycleResult 单标的单周期的运行结果, 只活到下一次汇总决策
type CycleResult struct {
	Symbol       string            `json:"symbol"`
	DataUpdated  bool              `json:"data_updated"`
	Session      MarketSession     `json:"market_state"`
	Signals      []strategy.Signal `json:"signals"`
	Processed    int               `json:"processed_signals"`
	CurrentPrice float64           `json:"current_price"`
	Timestamp    time.Time         `json:"timestamp"`
	Err          string            `json:"error,omitempty"`
}
