package monitor

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ResolveStrikes 把行权价描述符解析成相对新现货价的整数行权价。
// "ATM" 取最接近现货的整数, "ATM+N"/"ATM-N" 在取整后加减偏移。
// 无法识别的描述符跳过并告警。
func ResolveStrikes(spot float64, descriptors []string) []int {
	atm := int(spot + 0.5)
	strikes := make([]int, 0, len(descriptors))
	for _, desc := range descriptors {
		desc = strings.TrimSpace(desc)
		switch {
		case desc == "ATM":
			strikes = append(strikes, atm)
		case strings.HasPrefix(desc, "ATM+"):
			offset, err := strconv.Atoi(strings.TrimPrefix(desc, "ATM+"))
			if err != nil {
				slog.Warn("unrecognized strike descriptor", "descriptor", desc)
				continue
			}
			strikes = append(strikes, atm+offset)
		case strings.HasPrefix(desc, "ATM-"):
			offset, err := strconv.Atoi(strings.TrimPrefix(desc, "ATM-"))
			if err != nil {
				slog.Warn("unrecognized strike descriptor", "descriptor", desc)
				continue
			}
			strikes = append(strikes, atm-offset)
		default:
			slog.Warn("unrecognized strike descriptor", "descriptor", desc)
		}
	}
	return lo.Uniq(strikes)
}

// ResolveExpiries 把到期描述符解析成具体日期
func ResolveExpiries(today time.Time, descriptors []string) []time.Time {
	expiries := make([]time.Time, 0, len(descriptors))
	for _, desc := range descriptors {
		switch strings.TrimSpace(desc) {
		case "weekly":
			expiries = append(expiries, NextWeeklyExpiry(today))
		case "monthly":
			expiries = append(expiries, NextMonthlyExpiry(today))
		default:
			slog.Warn("unrecognized expiry descriptor", "descriptor", desc)
		}
	}
	return lo.UniqBy(expiries, func(t time.Time) string {
		return t.Format(time.DateOnly)
	})
}

// NextWeeklyExpiry 下一个严格晚于今天的"下周五", 距今 7~13 天,
// 即使今天就是周五也不取本周
func NextWeeklyExpiry(today time.Time) time.Time {
	days := (int(time.Friday)-int(today.Weekday())+7)%7 + 7
	return dateOnly(today).AddDate(0, 0, days)
}

// NextMonthlyExpiry 当月第三个周五, 已过则取下个月的。
// 按日历逐月精确计算, 跨月/跨年由 AddDate 保证正确。
func NextMonthlyExpiry(today time.Time) time.Time {
	exp := thirdFriday(today.Year(), today.Month(), today.Location())
	if exp.Before(dateOnly(today)) {
		next := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()).AddDate(0, 1, 0)
		exp = thirdFriday(next.Year(), next.Month(), next.Location())
	}
	return exp
}

func thirdFriday(year int, month time.Month, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+14)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
