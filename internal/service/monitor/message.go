package monitor

import (
	"fmt"
	"time"

	"github.com/KNICEX/option-monitor/internal/service/strategy"
)

var actionText = map[strategy.SignalKind]string{
	strategy.BuyCall:  "买入看涨期权",
	strategy.SellCall: "卖出看涨期权",
	strategy.BuyPut:   "买入看跌期权",
	strategy.SellPut:  "卖出看跌期权",
}

var sessionEmoji = map[MarketSession]string{
	SessionRegular:    "🟢",
	SessionPreMarket:  "🟡",
	SessionAfterHours: "🟠",
	SessionClosed:     "🔴",
	SessionOpen24x7:   "🟢",
}

// FormatSignalMessage 单条信号的人类可读通知
func FormatSignalMessage(sig strategy.Signal) string {
	action, ok := actionText[sig.Kind]
	if !ok {
		action = string(sig.Kind)
	}
	return fmt.Sprintf(`🔔 **期权交易信号**

📊 标的: **%s** (当前价格: $%.2f)
📈 信号: **%s**
💰 行权价: $%d
📅 到期日: %s
💎 策略: %s
🔍 置信度: %.0f%%

⏰ 信号生成时间: %s
`,
		sig.Symbol, sig.SpotPrice,
		action,
		sig.Strike,
		sig.Expiry,
		sig.Strategy,
		sig.Confidence*100,
		sig.Timestamp.Format(time.RFC3339),
	)
}
