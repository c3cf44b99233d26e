package monitor

import (
	"time"

	"github.com/KNICEX/option-monitor/internal/config"
)

// ClassifySession 由当前时间和交易时段配置推导市场时段。
// crypto 类标的始终是 24x7, 与配置的时间窗口无关。
func ClassifySession(now time.Time, ins config.Instrument) MarketSession {
	if ins.Market == config.MarketCrypto {
		return SessionOpen24x7
	}
	if !isWeekday(now) {
		return SessionClosed
	}

	cur := minuteOf(now)
	open := minuteOfClock(ins.TradingHours.MarketOpen)
	close := minuteOfClock(ins.TradingHours.MarketClose)
	pre := minuteOfClock(ins.TradingHours.PreMarketStart)
	after := minuteOfClock(ins.TradingHours.AfterHoursEnd)

	switch {
	case cur < pre || cur > after:
		return SessionClosed
	case cur < open:
		return SessionPreMarket
	case cur > close:
		return SessionAfterHours
	default:
		return SessionRegular
	}
}

// IsTradable 策略执行门槛, 比时段分类更严:
// 只有工作日的 [开盘, 收盘] 窗口才算可交易。crypto 随时可交易。
func IsTradable(now time.Time, ins config.Instrument) bool {
	if ins.Market == config.MarketCrypto {
		return true
	}
	if !isWeekday(now) {
		return false
	}
	cur := minuteOf(now)
	return cur >= minuteOfClock(ins.TradingHours.MarketOpen) &&
		cur <= minuteOfClock(ins.TradingHours.MarketClose)
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

func minuteOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// minuteOfClock 解析 "HH:MM", 配置加载时已做过格式校验, 解析失败返回 -1
func minuteOfClock(hhmm string) int {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return -1
	}
	return minuteOf(t)
}
