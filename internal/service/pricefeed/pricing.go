package pricefeed

import "math"

// 合成定价用的固定年化波动率
const pricingVol = 0.3

// TheoPrice 简化的合成期权定价: 内在价值 + spot*vol*sqrt(t)*0.4 的时间价值。
// 纯函数, 不含随机扰动, 扰动由具体 Feed 实现自行叠加。
func TheoPrice(kind OptionKind, spot, strike float64, daysToExpiry int) float64 {
	if daysToExpiry < 0 {
		daysToExpiry = 0
	}
	t := float64(daysToExpiry) / 365.0

	var intrinsic float64
	if kind == Call {
		intrinsic = math.Max(0, spot-strike)
	} else {
		intrinsic = math.Max(0, strike-spot)
	}
	timeValue := spot * pricingVol * math.Sqrt(t) * 0.4
	return intrinsic + timeValue
}
